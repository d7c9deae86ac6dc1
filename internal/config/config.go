package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "FAMCAL_"

type Application struct {
	// Host is the public origin of the frontend, used to build invitation links.
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Database Database `koanf:"db"`
	Auth     Auth     `koanf:"auth"`
	Mail     Mail     `koanf:"mail"`
	Cors     Cors     `koanf:"cors"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Auth struct {
	// JwtSecret verifies session tokens issued by the identity provider.
	JwtSecret string `koanf:"jwtsecret"`
}

type Mail struct {
	ResendApiKey string `koanf:"resendapikey"`
	From         string `koanf:"from"`
}

type Cors struct {
	AllowedOrigins []string `koanf:"allowedorigins"`
}

func defaults() Application {
	return Application{
		Host: "http://localhost:5173",
		Port: 8181,
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "famcal",
			Pass:   "",
			Name:   "famcal",
			Schema: "public",
		},
		Mail: Mail{
			From: "noreply@famcaly.com",
		},
		Cors: Cors{
			AllowedOrigins: []string{"http://localhost:5173"},
		},
	}
}

// Load reads configuration from struct defaults, then the YAML file at path, then FAMCAL_ environment
// variables. A .env file in the working directory is loaded into the environment first when present.
func Load(path string) (Application, error) {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug(".env file not found, skipping")
		} else {
			log.Warnf("could not load .env file: %v", err)
		}
	}

	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			if k == "cors.allowedorigins" {
				return k, strings.Split(v, ",")
			}
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/library-admin/pkg/kafka"
	"github.com/Astemirdum/library-admin/pkg/logger"
	"github.com/kelseyhightower/envconfig"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"CONSOLE_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"CONSOLE_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration
}

// RemoteAPI is the library backend the console is a front for.
type RemoteAPI struct {
	BaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:3000/api"`
	Timeout time.Duration `envconfig:"API_TIMEOUT" default:"1m"`
	// RefreshCookie is the name of the remote API's refresh cookie; the console
	// mirrors it into the browser so a new console session can refresh silently.
	RefreshCookie string `envconfig:"API_REFRESH_COOKIE" default:"refreshToken"`
}

type ActivityHTTPServer struct {
	Host string `envconfig:"ACTIVITY_HTTP_HOST"`
	Port string `envconfig:"ACTIVITY_HTTP_PORT"`
}

type Session struct {
	CookieName string        `envconfig:"SESSION_COOKIE" default:"console_sid"`
	TTL        time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	Secure     bool          `envconfig:"SESSION_SECURE" default:"false"`
}

type Config struct {
	Server             HTTPServer `yaml:"server"`
	API                RemoteAPI
	Session            Session
	Kafka              kafka.Config
	ActivityHTTPServer ActivityHTTPServer
	Log                logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}

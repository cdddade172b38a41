package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultConfig = `# h2wire Gateway Configuration File

logging:
  access_log: access.log
  error_log: error.log

server:
  port: 8443
  # Print the server version in the "server" header of responses.
  show_server_version: true
  # Compression applied to response bodies. Options: none, zstd, gzip, deflate
  encoding: none
  # Body served for every request.
  content_type: text/html; charset=utf-8
  content: |
    <!DOCTYPE html>
    <html><body><h1>h2wire</h1><p>It works.</p></body></html>

tls:
  # Both must be set to serve HTTP/2 over TLS (ALPN "h2").
  # Leave empty to serve cleartext h2c instead.
  cert_file: ""
  key_file: ""

http2:
  # Initial SETTINGS advertised to every peer.
  header_table_size: 4096
  max_frame_size: 16384
  max_concurrent_streams: 128

tap:
  # Stream a JSON line per frame over a websocket for debugging.
  enabled: false
  listen: 127.0.0.1:8089
`

var config *Config

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	TLS     TLSConfig     `yaml:"tls"`
	HTTP2   HTTP2Config   `yaml:"http2"`
	Tap     TapConfig     `yaml:"tap"`
}

type LoggingConfig struct {
	AccessLog string `yaml:"access_log"`
	ErrorLog  string `yaml:"error_log"`
}

type ServerConfig struct {
	Port              int    `yaml:"port"`
	ShowServerVersion bool   `yaml:"show_server_version"`
	Encoding          string `yaml:"encoding"`
	ContentType       string `yaml:"content_type"`
	Content           string `yaml:"content"`
}

type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type HTTP2Config struct {
	HeaderTableSize      uint32 `yaml:"header_table_size"`
	MaxFrameSize         uint32 `yaml:"max_frame_size"`
	MaxConcurrentStreams uint32 `yaml:"max_concurrent_streams"`
}

type TapConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

func CreateDefaultConfig() error {
	path := GetConfigPath()
	if _, err := os.Stat(GetDataDirectory()); os.IsNotExist(err) {
		err := os.MkdirAll(GetDataDirectory(), 0755)
		if err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		// Config file already exists, do nothing
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create default config file: %v", err)
	}
	defer f.Close()
	_, err = f.WriteString(DefaultConfig)
	if err != nil {
		return fmt.Errorf("failed to write default config file: %v", err)
	}
	return nil
}

func GetConfigPath() string {
	return GetDataDirectory() + string(os.PathSeparator) + "config.yaml"
}

func GetConfig() (Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err := CreateDefaultConfig()
			if err != nil {
				return Config{}, fmt.Errorf("failed to create default config file: %v", err)
			}
			return GetConfig()
		}
		return Config{}, fmt.Errorf("failed to read config file: %v", err)
	}

	var conf Config
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %v", err)
	}
	applyConfigDefaults(&conf)
	config = &conf
	return conf, nil
}

func applyConfigDefaults(conf *Config) {
	if conf.Server.Port == 0 {
		conf.Server.Port = 8443
	}
	if conf.Server.Encoding == "" {
		conf.Server.Encoding = "none"
	}
	if conf.Server.ContentType == "" {
		conf.Server.ContentType = "text/html; charset=utf-8"
	}
	if conf.HTTP2.HeaderTableSize == 0 {
		conf.HTTP2.HeaderTableSize = 4096
	}
	if conf.HTTP2.MaxFrameSize == 0 {
		conf.HTTP2.MaxFrameSize = 16384
	}
	if conf.Logging.AccessLog == "" {
		conf.Logging.AccessLog = "access.log"
	}
	if conf.Logging.ErrorLog == "" {
		conf.Logging.ErrorLog = "error.log"
	}
	if conf.Tap.Listen == "" {
		conf.Tap.Listen = "127.0.0.1:8089"
	}
}

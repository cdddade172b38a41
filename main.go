package main

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"

	"h2wire/cli"
)

const VERSION = "1.0.0"

func StartListener(conf Config) (net.Listener, error) {
	addr := fmt.Sprintf(":%d", conf.Server.Port)

	if conf.TLS.CertFile != "" && conf.TLS.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(conf.TLS.CertFile, conf.TLS.KeyFile)
		if err != nil {
			return nil, err
		}
		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
			NextProtos:   []string{"h2"},
		}
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		fmt.Printf("h2wire is serving h2 on port %d\n", conf.Server.Port)
		return tls.NewListener(listener, tlsConfig), nil
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	fmt.Printf("h2wire is serving h2c on port %d\n", conf.Server.Port)
	return listener, nil
}

func validateConfig() {
	println("Validating configuration...")
	configPath := GetConfigPath()
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		println("Configuration file does not exist. Did you run h2wire at least once?")
		return
	}
	conf, err := GetConfig()
	if err != nil {
		println("Invalid configuration:", err.Error())
		return
	}
	switch conf.Server.Encoding {
	case "none", "gzip", "deflate", "zstd":
	default:
		fmt.Printf("Invalid configuration: unknown encoding %q\n", conf.Server.Encoding)
		return
	}
	if conf.HTTP2.MaxFrameSize < 16384 || conf.HTTP2.MaxFrameSize > 1<<24-1 {
		fmt.Printf("Invalid configuration: max_frame_size %d out of range [16384, 16777215]\n", conf.HTTP2.MaxFrameSize)
		return
	}
	println("Configuration is valid")
}

func main() {
	if len(os.Args) > 1 {
		if os.Args[1] == "--version" || os.Args[1] == "-v" {
			fmt.Printf("h2wire version %s\n", VERSION)
			return
		} else if os.Args[1] == "--help" || os.Args[1] == "-h" {
			fmt.Println("Usage: h2wire [options]")
			fmt.Println("")
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Show version information")
			fmt.Println("  --help, -h       Show this help message")
			fmt.Println("  validate         Validate the configuration file")
			fmt.Println("  cert generate <host>   Generate a self-signed TLS certificate for the specified host")
			fmt.Println("  cert obtain <host>     Obtain a TLS certificate from Let's Encrypt for the specified host")
			return
		} else if os.Args[1] == "validate" {
			validateConfig()
			return
		} else if os.Args[1] == "cert" {
			if len(os.Args) < 4 {
				println("Please specify 'generate' or 'obtain' and a domain. Example: h2wire cert generate example.com")
				return
			}
			if os.Args[2] == "generate" {
				_, _, err := cli.GenerateSelfSignedCert(os.Args[3])
				if err != nil {
					println("Failed to generate self-signed certificate:", err.Error())
				}
				return
			} else if os.Args[2] == "obtain" {
				fmt.Println("Obtaining TLS certificate using Let's Encrypt...")
				_, _, err := cli.GenerateACMECert(os.Args[3])
				if err != nil {
					println("Failed to obtain TLS certificate:", err.Error())
				}
				return
			}
		}
		println("Unknown argument:", os.Args[1])
		return
	}

	conf, err := GetConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	SetLogFiles(conf.Logging.AccessLog, conf.Logging.ErrorLog)

	var tap *FrameTap
	if conf.Tap.Enabled {
		tap = StartFrameTap(conf.Tap.Listen)
		fmt.Printf("Frame tap listening on ws://%s/frames\n", conf.Tap.Listen)
	}

	listener, err := StartListener(conf)
	if err != nil {
		panic("Failed to start listener: " + err.Error())
	}
	defer listener.Close()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				println("Listener has been closed")
				break
			}
			println("Error accepting connection:", err.Error())
			continue
		}
		go handleConnection(conn, conf, tap)
	}
}

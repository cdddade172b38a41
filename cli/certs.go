package cli

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/acme/autocert"
)

// GenerateSelfSignedCert writes <host>.crt and <host>.key for the
// gateway's ALPN listener. Good enough for local testing; browsers will
// warn about it.
func GenerateSelfSignedCert(host string) (certPEM []byte, keyPEM []byte, err error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key: %v", err)
	}

	certPath := fmt.Sprintf("%s.crt", host)
	keyPath := fmt.Sprintf("%s.key", host)
	template := x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: host},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{host},
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create certificate: %v", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil {
		return nil, nil, fmt.Errorf("failed to write %s: %v", certPath, err)
	}

	b, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal private key: %v", err)
	}
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: b})
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		return nil, nil, fmt.Errorf("failed to write %s: %v", keyPath, err)
	}

	fmt.Printf("Generated self-signed cert: %s and %s\n", certPath, keyPath)
	return certPEM, keyPEM, nil
}

// GenerateACMECert obtains a certificate from Let's Encrypt for domain.
// Port 80 must be reachable from the internet for the HTTP-01 challenge.
func GenerateACMECert(domain string) (certPEM []byte, keyPEM []byte, err error) {
	m := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache("certs"),
		HostPolicy: autocert.HostWhitelist(domain),
	}

	// Temporary HTTP server for the ACME challenge
	challengeHandler := m.HTTPHandler(nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/acme-challenge/", func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.URL.Path, "/.well-known/acme-challenge/")
		fmt.Printf("[ACME] Challenge requested: token=%s\n", token)
		challengeHandler.ServeHTTP(w, r)
	})
	srv := &http.Server{Addr: ":80", Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("ACME challenge server error:", err.Error())
		}
	}()
	defer srv.Close()
	fmt.Println("Started HTTP server on port 80 for ACME challenge.\nIf you are running this behind Docker, ensure port 80 is exposed.\nIf you are using a firewall, ensure port 80 is open.")

	cert, err := m.GetCertificate(&tls.ClientHelloInfo{ServerName: domain})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to obtain certificate: %v", err)
	}

	certFile := domain + ".crt"
	keyFile := domain + ".key"
	var certBuf []byte
	for _, der := range cert.Certificate {
		certBuf = append(certBuf, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})...)
	}
	if err := os.WriteFile(certFile, certBuf, 0644); err != nil {
		return nil, nil, fmt.Errorf("failed to write %s: %v", certFile, err)
	}

	key, ok := cert.PrivateKey.(*ecdsa.PrivateKey)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected private key type %T", cert.PrivateKey)
	}
	b, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal private key: %v", err)
	}
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: b})
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		return nil, nil, fmt.Errorf("failed to write %s: %v", keyFile, err)
	}

	fmt.Printf("Obtained TLS certificate: %s and %s\n", certFile, keyFile)
	return certBuf, keyPEM, nil
}

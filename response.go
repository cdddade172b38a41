package main

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// EncodeBody compresses a response body with the configured library.
// "none" and "" return the body untouched.
func EncodeBody(body []byte, lib string) ([]byte, error) {
	var buf bytes.Buffer
	switch lib {
	case "none", "":
		return body, nil
	case "deflate":
		writer, err := flate.NewWriter(&buf, flate.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := writer.Write(body); err != nil {
			writer.Close()
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "gzip":
		writer := gzip.NewWriter(&buf)
		if _, err := writer.Write(body); err != nil {
			writer.Close()
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "zstd":
		writer, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := writer.Write(body); err != nil {
			writer.Close()
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", lib)
	}
}

package sniffer

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

// Schedule uploads are restricted to a few document formats; the declared
// Content-Type header is untrusted and the head bytes decide.
type DocType string

const (
	TypePDF  DocType = "pdf"
	TypeXLSX DocType = "xlsx"
	TypeCSV  DocType = "csv"
)

var ErrUnknownType = errors.New("unknown document type")

type Result struct {
	Type DocType
	MIME string
}

func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if bytes.HasPrefix(head, []byte("%PDF-")) {
		return Result{Type: TypePDF, MIME: "application/pdf"}, nil
	}

	// xlsx is a zip container; office formats all share the PK signature.
	if bytes.HasPrefix(head, []byte("PK\x03\x04")) {
		return Result{Type: TypeXLSX, MIME: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}, nil
	}

	mime := http.DetectContentType(head)
	if strings.HasPrefix(mime, "text/plain") || strings.HasPrefix(mime, "text/csv") {
		return Result{Type: TypeCSV, MIME: "text/csv"}, nil
	}

	return Result{}, ErrUnknownType
}

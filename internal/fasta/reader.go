// internal/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Query holds the raw FASTA payload submitted to the search service, plus the
// record ids found while validating it. The payload is sent verbatim; the ids
// are only used for logging and sanity checks.
type Query struct {
	Raw []byte
	IDs []string
}

// Load reads an entire FASTA file ("-" for stdin, ".gz" accepted) and checks
// that it contains at least one record with sequence data.
func Load(path string) (Query, error) {
	rc, err := openReader(path)
	if err != nil {
		return Query{}, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return Query{}, fmt.Errorf("read %s: %w", path, err)
	}

	ids, err := scanHeaders(raw)
	if err != nil {
		return Query{}, fmt.Errorf("%s: %w", path, err)
	}
	return Query{Raw: raw, IDs: ids}, nil
}

// scanHeaders walks the payload line by line, collecting record ids and
// rejecting input that is not FASTA at all.
func scanHeaders(raw []byte) ([]string, error) {
	var (
		ids     []string
		seqSeen bool
	)
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			fields := strings.Fields(string(line[1:]))
			if len(fields) == 0 {
				ids = append(ids, "")
			} else {
				ids = append(ids, fields[0])
			}
			continue
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("not a FASTA file: data before first '>' header")
		}
		seqSeen = true
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("not a FASTA file: no '>' header found")
	}
	if !seqSeen {
		return nil, fmt.Errorf("no sequence data after header")
	}
	return ids, nil
}

func openReader(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: fh}, nil
	}
	return fh, nil
}

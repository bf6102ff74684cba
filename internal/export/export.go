// Package export serializes process records to text, JSON or Prometheus
// exposition format and writes them to disk.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"procman/internal/proc"
)

// ErrInvalidArgument is returned for unknown format names.
var ErrInvalidArgument = errors.New("invalid argument")

// Format names an export encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatProm Format = "prom"
)

// Formats lists every supported format name.
var Formats = []Format{FormatText, FormatJSON, FormatProm}

// ParseFormat accepts a format name, ignoring case and surrounding space.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatJSON, FormatProm:
		return f, nil
	case "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", ErrInvalidArgument, s)
}

// ExportError reports a failed write with the destination path.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

type jsonRecord struct {
	PID        int     `json:"pid"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpu_usage_percent"`
	MemoryKB   uint64  `json:"memory_kb"`
	Owner      string  `json:"owner"`
}

// Encode renders records in format without touching the filesystem.
func Encode(records []proc.Record, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return encodeText(records), nil
	case FormatJSON:
		return encodeJSON(records)
	case FormatProm:
		return encodeProm(records)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", ErrInvalidArgument, format)
}

func encodeText(records []proc.Record) []byte {
	var buf bytes.Buffer
	for _, r := range records {
		buf.WriteString(strconv.Itoa(r.PID))
		buf.WriteString(": ")
		buf.WriteString(r.Name)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func encodeJSON(records []proc.Record) ([]byte, error) {
	out := make([]jsonRecord, 0, len(records))
	for _, r := range records {
		out = append(out, jsonRecord{
			PID:        r.PID,
			Name:       r.Name,
			CPUPercent: proc.Finite(r.CPUPercent),
			MemoryKB:   r.MemoryKB,
			Owner:      r.Owner,
		})
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(b, '\n'), nil
}

func encodeProm(records []proc.Record) ([]byte, error) {
	reg := prometheus.NewRegistry()
	cpu := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "procman",
		Subsystem: "process",
		Name:      "cpu_usage_percent",
		Help:      "CPU usage of the process since the previous refresh.",
	}, []string{"pid", "name", "owner"})
	mem := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "procman",
		Subsystem: "process",
		Name:      "memory_kb",
		Help:      "Resident memory of the process in kilobytes.",
	}, []string{"pid", "name", "owner"})
	reg.MustRegister(cpu, mem)

	for _, r := range records {
		labels := prometheus.Labels{"pid": strconv.Itoa(r.PID), "name": r.Name, "owner": r.Owner}
		cpu.With(labels).Set(r.CPUPercent)
		mem.With(labels).Set(float64(r.MemoryKB))
	}

	families, err := reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return nil, fmt.Errorf("encode metrics: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// WriteFile encodes records and replaces path atomically. The destination
// directory must already exist.
func WriteFile(records []proc.Record, format Format, path string) error {
	b, err := Encode(records, format)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

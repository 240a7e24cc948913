package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Instruments is the static list of codes to collect, split by group.
// It mirrors the config.json shape: {"stocks": [...], "fiis": [...]}.
type Instruments struct {
	Stocks []string `json:"stocks"`
	FIIs   []string `json:"fiis"`
}

// LoadInstruments reads the instrument lists from a JSON file and
// normalizes codes to uppercase.
func LoadInstruments(path string) (Instruments, error) {
	var ins Instruments
	b, err := os.ReadFile(path)
	if err != nil {
		return ins, fmt.Errorf("read instruments file: %w", err)
	}
	if err := json.Unmarshal(b, &ins); err != nil {
		return ins, fmt.Errorf("parse instruments file: %w", err)
	}
	ins.Stocks = normalize(ins.Stocks)
	ins.FIIs = normalize(ins.FIIs)
	return ins, nil
}

func normalize(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

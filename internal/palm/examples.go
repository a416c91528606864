package palm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Example is one few-shot input/output pair used to bias the model's response
// style. Examples are loaded once at startup and reused for every call.
type Example struct {
	InputText  string `json:"input_text"`
	OutputText string `json:"output_text"`
}

// LoadExamples reads newline-delimited JSON example pairs from path. Blank
// lines are skipped and a UTF-8 BOM on the first line is tolerated, since the
// sample files are often edited on Windows.
func LoadExamples(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open examples file: %w", err)
	}
	defer f.Close()

	var out []Example
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var ex Example
		if err := json.Unmarshal([]byte(line), &ex); err != nil {
			return nil, fmt.Errorf("parse example %q: %w", line, err)
		}
		out = append(out, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read examples file: %w", err)
	}
	return out, nil
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/wonny/esgpulse/internal/contracts"
)

// WriteDataset serializes the dataset as indented JSON, creating the
// output directory first. The file is replaced atomically.
func WriteDataset(path string, dataset *contracts.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace dataset: %w", err)
	}

	return nil
}

// ReadDataset loads a dataset written by WriteDataset
func ReadDataset(path string) (*contracts.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var dataset contracts.Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if dataset.Companies == nil {
		dataset.Companies = []contracts.Company{}
	}

	return &dataset, nil
}

// Execute runs the pipeline and writes the result to outputPath
func (p *Pipeline) Execute(ctx context.Context, prices PriceSource, reference ReferenceSource, outputPath string) (*Report, error) {
	run := p.forRun(uuid.New().String())

	dataset, report, err := run.run(ctx, prices, reference)
	if err != nil {
		return nil, err
	}

	run.logger.WithFields(map[string]interface{}{
		"companies": len(dataset.Companies),
		"path":      outputPath,
	}).Info("Exporting dataset")

	if err := WriteDataset(outputPath, dataset); err != nil {
		return report, err
	}
	report.OutputPath = outputPath

	return report, nil
}

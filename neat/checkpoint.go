package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
)

// checkpointData is what a checkpoint file holds. Genomes are stored in their
// text encoding so the checkpoint shares the codec's round-trip guarantees.
type checkpointData struct {
	Generation int
	Genomes    map[string][]byte
}

// Checkpoint is a named set of genomes captured at some generation.
type Checkpoint struct {
	Generation int
	Genomes    map[string]*Genome
}

// SaveCheckpoint writes the checkpoint to filePath using gzip compression.
func SaveCheckpoint(filePath string, cp *Checkpoint) error {
	data := checkpointData{
		Generation: cp.Generation,
		Genomes:    make(map[string][]byte, len(cp.Genomes)),
	}
	for name, g := range cp.Genomes {
		text, err := g.MarshalText()
		if err != nil {
			return fmt.Errorf("failed to encode genome %q: %w", name, err)
		}
		data.Genomes[name] = text
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(data); err != nil {
		_ = gzWriter.Close()
		return fmt.Errorf("failed to encode checkpoint data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint file '%s': %w", filePath, err)
	}
	return file.Close()
}

// LoadCheckpoint reads a checkpoint written by SaveCheckpoint.
func LoadCheckpoint(filePath string) (*Checkpoint, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	var data checkpointData
	if err := gob.NewDecoder(gzReader).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint data: %w", err)
	}

	cp := &Checkpoint{
		Generation: data.Generation,
		Genomes:    make(map[string]*Genome, len(data.Genomes)),
	}
	for name, text := range data.Genomes {
		g, err := decodeGenome(text)
		if err != nil {
			return nil, fmt.Errorf("checkpoint genome %q: %w", name, err)
		}
		cp.Genomes[name] = g
	}
	return cp, nil
}

package manifest

import (
	"fmt"

	"tablestore/pkg/blockcodec"
	"tablestore/pkg/blockfile"
)

// WriteList serializes a manifest-list (an ordered sequence of FileMeta) to
// path.
func WriteList(path string, list List, algo blockcodec.Algorithm) error {
	bw, err := blockfile.Create(path, listMagic, algo, DefaultRecordsPerBlock)
	if err != nil {
		return fmt.Errorf("manifest: write list: %w", err)
	}
	for _, m := range list {
		if err := bw.AppendRecord(encodeFileMeta(m)); err != nil {
			return fmt.Errorf("manifest: write list entry: %w", err)
		}
	}
	if _, _, err := bw.Close(); err != nil {
		return fmt.Errorf("manifest: write list: %w", err)
	}
	return nil
}

// ReadList reads a manifest-list from path, preserving on-disk (commit)
// order.
func ReadList(path string) (List, error) {
	r, err := blockfile.Open(path, listMagic)
	if err != nil {
		return nil, fmt.Errorf("manifest: read list %s: %w", path, err)
	}
	defer r.Close()

	var list List
	for {
		payload, ok, err := r.NextBlock()
		if err != nil {
			return nil, fmt.Errorf("manifest: read list block: %w", err)
		}
		if !ok {
			break
		}
		count, offset, err := blockfile.RecordCount(payload)
		if err != nil {
			return nil, fmt.Errorf("manifest: read list block: %w", err)
		}
		for i := uint32(0); i < count; i++ {
			m, n, err := decodeFileMeta(payload[offset:])
			if err != nil {
				return nil, fmt.Errorf("manifest: decode list entry %d: %w", i, err)
			}
			list = append(list, m)
			offset += n
		}
	}
	return list, nil
}

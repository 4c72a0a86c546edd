package config

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
)

type taskChecksumEntry struct {
	Name      string `json:"name"`
	Index     int    `json:"index"`
	Period    int64  `json:"period"`
	Deadline  int64  `json:"deadline"`
	Execution int64  `json:"execution"`
}

type taskSetChecksumPayload struct {
	Tasks []taskChecksumEntry `json:"tasks"`
}

// TaskSetChecksum returns a short, stable checksum that identifies the task set
// (the tasks and their parameters), independent of scheduler choice, render
// options and map order.
//
// It computes MD5 over a canonical JSON representation and returns the first 6 hex
// characters (equivalent to `md5sum | cut -c1-6`).
func TaskSetChecksum(cfg *TaskSetConfig) (string, error) {
	if cfg == nil {
		return "", nil
	}

	entries := make([]taskChecksumEntry, 0, len(cfg.Tasks))
	for key, tc := range cfg.Tasks {
		entries = append(entries, taskChecksumEntry{
			Name:      key,
			Index:     tc.Index,
			Period:    int64(tc.Period),
			Deadline:  int64(tc.RelativeDeadline()),
			Execution: int64(tc.Execution),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Index != entries[j].Index {
			return entries[i].Index < entries[j].Index
		}
		return entries[i].Name < entries[j].Name
	})

	payload := taskSetChecksumPayload{Tasks: entries}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	sum := md5.Sum(b)
	hexStr := hex.EncodeToString(sum[:])
	if len(hexStr) > 6 {
		hexStr = hexStr[:6]
	}
	return hexStr, nil
}

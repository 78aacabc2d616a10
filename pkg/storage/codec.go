package storage

import (
	"encoding/binary"
)

const prefixJournal = "j:"

func journalKey(seq uint64) []byte {
	k := make([]byte, len(prefixJournal)+8)
	copy(k, prefixJournal)
	binary.BigEndian.PutUint64(k[len(prefixJournal):], seq)
	return k
}

func seqFromKey(k []byte) uint64 {
	if len(k) != len(prefixJournal)+8 {
		return 0
	}
	return binary.BigEndian.Uint64(k[len(prefixJournal):])
}

// keyUpperBound returns the smallest key greater than every key with the
// given prefix.
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

package model

import (
	"encoding/json"
)

// DexRecord is one captured program-data payload, normalized for storage.
// Field order matches the on-disk JSONL layout.
type DexRecord struct {
	HexSize   int    `json:"hexsize"`
	Timestamp string `json:"timestamp"`
	Txid      string `json:"txid"`
	ProgramID string `json:"programid"`
	DexName   string `json:"dexname"`
	Base64    string `json:"base64"`
	Hex       string `json:"hex"`
}

// MarshalJSON ensures DexRecord is encoded with stable field names.
func (r DexRecord) MarshalJSON() ([]byte, error) {
	type Alias DexRecord
	return json.Marshal(Alias(r))
}

// UnmarshalJSON decodes a DexRecord from JSON.
func (r *DexRecord) UnmarshalJSON(data []byte) error {
	type Alias DexRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = DexRecord(a)
	return nil
}

package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"soldexlogs/internal/config"
	"soldexlogs/internal/decode"
	"soldexlogs/internal/model"
)

// runVerify scans a captured JSONL file and checks every line: it must
// parse as a record, and hexsize/hex must agree with the base64 payload.
func runVerify(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadVerify(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	file, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, ok, bad int
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		if err := verifyLine(line); err != nil {
			bad++
			logger.Warn("bad record", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		ok++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	logger.Info("verify complete",
		zap.String("in", cfg.In),
		zap.Int("total", total),
		zap.Int("ok", ok),
		zap.Int("bad", bad),
	)

	if bad > 0 {
		return fmt.Errorf("%d of %d records failed verification", bad, total)
	}
	return nil
}

func verifyLine(line []byte) error {
	var record model.DexRecord
	if err := json.Unmarshal(line, &record); err != nil {
		return fmt.Errorf("parse record: %w", err)
	}
	if record.Txid == "" {
		return fmt.Errorf("empty txid")
	}
	if record.ProgramID == "" {
		return fmt.Errorf("empty programid")
	}

	data, err := decode.Base64(record.Base64)
	if err != nil {
		return err
	}
	if record.HexSize != len(data) {
		return fmt.Errorf("hexsize %d does not match payload length %d", record.HexSize, len(data))
	}
	if record.Hex != hex.EncodeToString(data) {
		return fmt.Errorf("hex does not match base64 payload")
	}
	return nil
}

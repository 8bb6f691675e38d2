package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/PxPatel/lob-simulator/internal/types"
)

// FileTradeStore appends trades to a JSON lines audit file.
// Writes are synchronous and flushed per call so the file always reflects
// the engine's execution order. Reads are not supported; pair it with an
// InMemoryTradeStore inside a CompositeTradeStore.
type FileTradeStore struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mutex   sync.Mutex
}

// NewFileTradeStore opens (or creates) filePath for appending
func NewFileTradeStore(filePath string) (*FileTradeStore, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade log: %w", err)
	}

	writer := bufio.NewWriter(file)
	return &FileTradeStore{
		file:    file,
		writer:  writer,
		encoder: json.NewEncoder(writer),
	}, nil
}

func (s *FileTradeStore) Save(trade types.Trade) error {
	return s.SaveBatch([]types.Trade{trade})
}

func (s *FileTradeStore) SaveBatch(trades []types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.file == nil {
		return fmt.Errorf("trade log is closed")
	}
	for _, trade := range trades {
		if err := s.encoder.Encode(trade); err != nil {
			return fmt.Errorf("failed to encode trade %d: %w", trade.TradeID, err)
		}
	}
	return s.writer.Flush()
}

func (s *FileTradeStore) GetRecent(limit int) ([]types.Trade, error) {
	// File store is write-only
	return []types.Trade{}, nil
}

func (s *FileTradeStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.file == nil {
		return nil
	}
	flushErr := s.writer.Flush()
	closeErr := s.file.Close()
	s.file = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

package file

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/nextlevelbuilder/goclaw/internal/store"
)

type pairingEntry struct {
	ExternalUserID string `json:"externalUserId"`
	Channel        string `json:"channel"`
	ChatID         string `json:"chatId"`
	AgentID        string `json:"agentId"`
	Approved       bool   `json:"approved"`
}

// FilePairingStore persists channel-identity pairings as a single JSON
// document, following the same load-mutate-save shape as the teacher's
// file-backed session persistence rather than an append-only log, since
// pairing state is small and rewritten wholesale on every change.
type FilePairingStore struct {
	path string

	mu      sync.Mutex
	codes   map[string]pairingEntry // pairing code -> pending/approved entry
	paired  map[string]bool         // "channel:externalUserId" -> approved
}

func NewFilePairingStore(path string) (*FilePairingStore, error) {
	s := &FilePairingStore{path: path, codes: make(map[string]pairingEntry), paired: make(map[string]bool)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FilePairingStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("file: load pairing store: %w", err)
	}
	var doc struct {
		Codes map[string]pairingEntry `json:"codes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("file: parse pairing store: %w", err)
	}
	for code, e := range doc.Codes {
		s.codes[code] = e
		if e.Approved {
			s.paired[e.Channel+":"+e.ExternalUserID] = true
		}
	}
	return nil
}

func (s *FilePairingStore) saveLocked() error {
	doc := struct {
		Codes map[string]pairingEntry `json:"codes"`
	}{Codes: s.codes}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

func (s *FilePairingStore) IsPaired(externalUserID, channel string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paired[channel+":"+externalUserID]
}

func (s *FilePairingStore) RequestPairing(externalUserID, channel, chatID, agentID string) (string, error) {
	code := newPairingCode()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code] = pairingEntry{ExternalUserID: externalUserID, Channel: channel, ChatID: chatID, AgentID: agentID}
	return code, s.saveLocked()
}

func (s *FilePairingStore) ApprovePairing(code string) (string, string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[code]
	if !ok {
		return "", "", "", fmt.Errorf("file: unknown pairing code")
	}
	e.Approved = true
	s.codes[code] = e
	s.paired[e.Channel+":"+e.ExternalUserID] = true
	return e.ExternalUserID, e.Channel, e.ChatID, s.saveLocked()
}

func newPairingCode() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%x", b)
}

var _ store.PairingStore = (*FilePairingStore)(nil)

package testutil

import (
	"testing"

	"letterbox/internal/database"
	"letterbox/internal/encryption"
	"letterbox/internal/lb"
	"letterbox/internal/notify"
	"letterbox/internal/storage"
)

// ServiceEnv bundles an LBService with the fakes behind it.
type ServiceEnv struct {
	Service  *lb.LBService
	DB       *database.SQLiteDatabase
	Cipher   *encryption.AESGCMCipher
	Store    *storage.MemoryStore
	Notifier *notify.MemoryNotifier
	Logger   *RecordingLogger
	Clock    *StubClock
	IDs      *StubIDGenerator
}

// NewServiceEnv wires an LBService over an in-memory database, the test
// cipher, a memory store and a memory notifier, with a fixed clock.
func NewServiceEnv(t *testing.T) *ServiceEnv {
	t.Helper()
	return newServiceEnv(t, NewTestDatabase(t))
}

// NewFileServiceEnv is NewServiceEnv over a file database; see NewFileTestDatabase.
func NewFileServiceEnv(t *testing.T) *ServiceEnv {
	t.Helper()
	return newServiceEnv(t, NewFileTestDatabase(t))
}

func newServiceEnv(t *testing.T, db *database.SQLiteDatabase) *ServiceEnv {
	env := &ServiceEnv{
		DB:       db,
		Store:    storage.NewMemoryStore(""),
		Notifier: notify.NewMemoryNotifier(),
		Logger:   NewRecordingLogger(),
		Clock:    FixedClock(),
		IDs:      NewStubIDGenerator(),
	}
	env.Cipher = NewTestCipher(t, env.Logger)
	env.Service = lb.NewLBService(env.DB, env.Cipher, env.Store, env.Notifier, env.Logger, env.Clock, env.IDs)

	// Registered after the database cleanup, so pending dispatches finish before it closes.
	t.Cleanup(env.Service.Wait)
	return env
}

package sync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/platform/password"
	"github.com/diagnosis/luxstay-hotel/internal/platform/token"
	"github.com/diagnosis/luxstay-hotel/internal/repo/source"
	syncer "github.com/diagnosis/luxstay-hotel/internal/sync"
)

// ---------- Mocks ----------

type mockSource struct {
	rooms    []source.Room
	pingErr  error
	listErr  error
	listGate chan struct{} // when set, ListRooms blocks until closed
}

func (m *mockSource) Ping(_ context.Context) error { return m.pingErr }

func (m *mockSource) ListRooms(_ context.Context) ([]source.Room, error) {
	if m.listGate != nil {
		<-m.listGate
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.rooms, nil
}

type mockRooms struct {
	byNumber map[string]domain.Room
	upserts  int
	deletes  int
}

func newMockRooms() *mockRooms {
	return &mockRooms{byNumber: make(map[string]domain.Room)}
}

func (m *mockRooms) GetByNumber(_ context.Context, roomNumber string) (*domain.Room, error) {
	if r, ok := m.byNumber[roomNumber]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *mockRooms) List(_ context.Context) ([]domain.Room, error) {
	out := make([]domain.Room, 0, len(m.byNumber))
	for _, r := range m.byNumber {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRooms) SetStatus(_ context.Context, roomNumber string, status domain.RoomStatus) error {
	r := m.byNumber[roomNumber]
	r.Status = status
	m.byNumber[roomNumber] = r
	return nil
}

func (m *mockRooms) BulkUpsert(_ context.Context, upserts []domain.RoomUpsert) (int, error) {
	for _, u := range upserts {
		m.byNumber[u.RoomNumber] = domain.Room{RoomNumber: u.RoomNumber, Status: u.Status}
	}
	m.upserts += len(upserts)
	return len(upserts), nil
}

func (m *mockRooms) DeleteNotIn(_ context.Context, active []string) (int64, error) {
	keep := make(map[string]bool, len(active))
	for _, a := range active {
		keep[a] = true
	}
	var deleted int64
	for n := range m.byNumber {
		if !keep[n] {
			delete(m.byNumber, n)
			deleted++
		}
	}
	m.deletes += int(deleted)
	return deleted, nil
}

func (m *mockRooms) Counts(_ context.Context) (int, int, error) {
	occupied := 0
	for _, r := range m.byNumber {
		if r.Status == domain.RoomOccupied {
			occupied++
		}
	}
	return len(m.byNumber), occupied, nil
}

type mockSessions struct {
	bySessionID map[string]domain.GuestSession
}

func newMockSessions() *mockSessions {
	return &mockSessions{bySessionID: make(map[string]domain.GuestSession)}
}

func (m *mockSessions) Create(_ context.Context, s *domain.GuestSession) error {
	m.bySessionID[s.SessionID] = *s
	return nil
}

func (m *mockSessions) GetBySessionID(_ context.Context, sessionID string) (*domain.GuestSession, error) {
	if s, ok := m.bySessionID[sessionID]; ok && s.ExpiresAt.After(time.Now()) {
		return &s, nil
	}
	return nil, nil
}

func (m *mockSessions) ExtendExpiry(_ context.Context, sessionID string, expiresAt time.Time) error {
	s, ok := m.bySessionID[sessionID]
	if !ok {
		return nil
	}
	s.ExpiresAt = expiresAt
	m.bySessionID[sessionID] = s
	return nil
}

func (m *mockSessions) BulkUpsert(_ context.Context, upserts []domain.SessionUpsert) (int, error) {
	for _, u := range upserts {
		synced := u.SyncedAt
		m.bySessionID[u.SessionID] = domain.GuestSession{
			SessionID:  u.SessionID,
			Source:     u.Source,
			GuestName:  u.GuestName,
			RoomNumber: u.RoomNumber,
			ExpiresAt:  u.ExpiresAt,
			SyncedAt:   &synced,
		}
	}
	return len(upserts), nil
}

func (m *mockSessions) DeleteSyncedNotIn(_ context.Context, activeIDs []string) (int64, error) {
	keep := make(map[string]bool, len(activeIDs))
	for _, id := range activeIDs {
		keep[id] = true
	}
	var deleted int64
	for id, s := range m.bySessionID {
		if s.Source == domain.SourceHotelSync && !keep[id] {
			delete(m.bySessionID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockSessions) DeleteExpired(_ context.Context) (int64, error) {
	var deleted int64
	for id, s := range m.bySessionID {
		if s.ExpiresAt.Before(time.Now()) {
			delete(m.bySessionID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockSessions) DeleteByGuestRoom(_ context.Context, guestName, roomNumber string, src domain.Source) (int64, error) {
	var deleted int64
	for id, s := range m.bySessionID {
		if s.GuestName == guestName && s.RoomNumber == roomNumber && s.Source == src {
			delete(m.bySessionID, id)
			deleted++
		}
	}
	return deleted, nil
}

type mockCredentials struct {
	byKey   map[string]domain.GuestCredential // room|name
	upserts int
}

func newMockCredentials() *mockCredentials {
	return &mockCredentials{byKey: make(map[string]domain.GuestCredential)}
}

func credKey(roomNumber, guestName string) string { return roomNumber + "|" + guestName }

func (m *mockCredentials) FindActive(_ context.Context, guestName, roomNumber string) (*domain.GuestCredential, error) {
	if c, ok := m.byKey[credKey(roomNumber, guestName)]; ok && c.Status == domain.CredentialActive {
		return &c, nil
	}
	return nil, nil
}

func (m *mockCredentials) ListActiveByRoom(_ context.Context, roomNumber string) ([]domain.GuestCredential, error) {
	var out []domain.GuestCredential
	for _, c := range m.byKey {
		if c.RoomNumber == roomNumber && c.Status == domain.CredentialActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCredentials) ListActiveBySource(_ context.Context, src domain.Source) ([]domain.GuestCredential, error) {
	var out []domain.GuestCredential
	for _, c := range m.byKey {
		if c.Source == src && c.Status == domain.CredentialActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCredentials) Upsert(_ context.Context, u domain.CredentialUpsert) error {
	m.byKey[credKey(u.RoomNumber, u.GuestName)] = domain.GuestCredential{
		Source:       u.Source,
		GuestName:    u.GuestName,
		RoomNumber:   u.RoomNumber,
		PasswordHash: u.PasswordHash,
		Status:       domain.CredentialActive,
	}
	m.upserts++
	return nil
}

func (m *mockCredentials) BulkUpsert(ctx context.Context, upserts []domain.CredentialUpsert) (int, error) {
	for _, u := range upserts {
		if err := m.Upsert(ctx, u); err != nil {
			return 0, err
		}
	}
	return len(upserts), nil
}

func (m *mockCredentials) Deactivate(_ context.Context, guestName, roomNumber string, _ domain.Source) (int64, error) {
	key := credKey(roomNumber, guestName)
	c, ok := m.byKey[key]
	if !ok || c.Status != domain.CredentialActive {
		return 0, nil
	}
	c.Status = domain.CredentialInactive
	m.byKey[key] = c
	return 1, nil
}

// ---------- Tests ----------

func newTestReconciler(src *mockSource, rooms *mockRooms, sessions *mockSessions, creds *mockCredentials) *syncer.Reconciler {
	return syncer.NewReconciler(src, rooms, sessions, creds, nil, time.Minute, time.Hour)
}

func TestRunCycleMirrorsSourceRooms(t *testing.T) {
	src := &mockSource{rooms: []source.Room{
		{Room: "101", Guests: []string{"AGRAWAL MR. 25357"}},
		{Room: "102", Guests: nil},
	}}
	rooms, sessions, creds := newMockRooms(), newMockSessions(), newMockCredentials()
	r := newTestReconciler(src, rooms, sessions, creds)

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	occupied, ok := rooms.byNumber["101"]
	if !ok || occupied.Status != domain.RoomOccupied {
		t.Fatalf("room 101 = %+v, want occupied", occupied)
	}
	if vacant := rooms.byNumber["102"]; vacant.Status != domain.RoomAvailable {
		t.Fatalf("room 102 status = %q, want available", vacant.Status)
	}

	cred, ok := creds.byKey[credKey("101", "MR. AGRAWAL")]
	if !ok {
		t.Fatal("expected credential for MR. AGRAWAL in room 101")
	}
	if !password.Verify("101_agrawal", cred.PasswordHash) {
		t.Error("credential hash does not verify against the scheme password")
	}

	sessionID := token.SyncSessionID("101", "AGRAWAL MR. 25357")
	session, ok := sessions.bySessionID[sessionID]
	if !ok {
		t.Fatalf("expected session %s", sessionID)
	}
	if session.GuestName != "MR. AGRAWAL" || session.RoomNumber != "101" {
		t.Errorf("session = %+v, want MR. AGRAWAL in 101", session)
	}
	if session.Source != domain.SourceHotelSync {
		t.Errorf("session source = %q, want hotel_sync", session.Source)
	}
}

func TestRunCycleIsIdempotent(t *testing.T) {
	src := &mockSource{rooms: []source.Room{
		{Room: "101", Guests: []string{"AGRAWAL MR. 25357"}},
	}}
	rooms, sessions, creds := newMockRooms(), newMockSessions(), newMockCredentials()
	r := newTestReconciler(src, rooms, sessions, creds)

	r.RunCycle(context.Background())
	firstHash := creds.byKey[credKey("101", "MR. AGRAWAL")].PasswordHash
	firstUpserts := creds.upserts

	r.RunCycle(context.Background())

	if creds.upserts != firstUpserts {
		t.Errorf("second cycle rewrote %d credentials, want 0", creds.upserts-firstUpserts)
	}
	if got := creds.byKey[credKey("101", "MR. AGRAWAL")].PasswordHash; got != firstHash {
		t.Error("second cycle rehashed an already-valid credential")
	}

	st := r.Status()
	if !st.LastSuccess {
		t.Errorf("status = %+v, want success", st)
	}
	if st.Cycle != 2 {
		t.Errorf("cycle = %d, want 2", st.Cycle)
	}
}

func TestRunCycleDeletesDepartedGuestSessionNotCredential(t *testing.T) {
	src := &mockSource{rooms: []source.Room{
		{Room: "101", Guests: []string{"AGRAWAL MR. 25357"}},
	}}
	rooms, sessions, creds := newMockRooms(), newMockSessions(), newMockCredentials()
	r := newTestReconciler(src, rooms, sessions, creds)

	r.RunCycle(context.Background())

	src.rooms = []source.Room{{Room: "101", Guests: nil}}
	r.RunCycle(context.Background())

	sessionID := token.SyncSessionID("101", "AGRAWAL MR. 25357")
	if _, ok := sessions.bySessionID[sessionID]; ok {
		t.Error("departed guest's session survived the sweep")
	}
	if _, ok := creds.byKey[credKey("101", "MR. AGRAWAL")]; !ok {
		t.Error("departed guest's credential was deleted; it must be kept")
	}
	if got := rooms.byNumber["101"].Status; got != domain.RoomAvailable {
		t.Errorf("room 101 status = %q, want available", got)
	}
}

func TestRunCycleRemovesVanishedRooms(t *testing.T) {
	src := &mockSource{rooms: []source.Room{
		{Room: "101", Guests: nil},
		{Room: "102", Guests: nil},
	}}
	rooms, sessions, creds := newMockRooms(), newMockSessions(), newMockCredentials()
	r := newTestReconciler(src, rooms, sessions, creds)

	r.RunCycle(context.Background())

	src.rooms = []source.Room{{Room: "101", Guests: nil}}
	r.RunCycle(context.Background())

	if _, ok := rooms.byNumber["102"]; ok {
		t.Error("room 102 vanished from the source but survived the sweep")
	}
	if _, ok := rooms.byNumber["101"]; !ok {
		t.Error("room 101 should still exist")
	}
}

func TestRunCycleSkipsBlankGuestLabels(t *testing.T) {
	src := &mockSource{rooms: []source.Room{
		{Room: "101", Guests: []string{"", "   ", "AGRAWAL MR. 25357"}},
		{Room: "201", Guests: []string{"", "   "}},
	}}
	rooms, sessions, creds := newMockRooms(), newMockSessions(), newMockCredentials()
	r := newTestReconciler(src, rooms, sessions, creds)

	r.RunCycle(context.Background())

	if len(creds.byKey) != 1 {
		t.Fatalf("credentials = %d, want 1", len(creds.byKey))
	}
	if got := r.Status().GuestsSkipped; got != 4 {
		t.Errorf("guests skipped = %d, want 4", got)
	}
	// Blank labels alongside a real guest never make the room look vacant.
	if got := rooms.byNumber["101"].Status; got != domain.RoomOccupied {
		t.Errorf("room 101 status = %q, want occupied", got)
	}
	// A room with only blank labels is vacant: occupancy requires a label
	// that survives normalization, not a merely non-empty list.
	if got := rooms.byNumber["201"].Status; got != domain.RoomAvailable {
		t.Errorf("room 201 status = %q, want available", got)
	}
}

func TestRunCycleSkipsWhenSourceUnreachable(t *testing.T) {
	src := &mockSource{pingErr: errors.New("connection refused")}
	rooms, sessions, creds := newMockRooms(), newMockSessions(), newMockCredentials()
	r := newTestReconciler(src, rooms, sessions, creds)

	if err := r.RunCycle(context.Background()); !errors.Is(err, syncer.ErrSourceUnavailable) {
		t.Fatalf("RunCycle error = %v, want ErrSourceUnavailable", err)
	}
	if rooms.upserts != 0 || len(sessions.bySessionID) != 0 || creds.upserts != 0 {
		t.Error("skipped cycle still performed writes")
	}
}

func TestRunCycleRecordsFailureWithoutPanicking(t *testing.T) {
	src := &mockSource{listErr: errors.New("relation does not exist")}
	rooms, sessions, creds := newMockRooms(), newMockSessions(), newMockCredentials()
	r := newTestReconciler(src, rooms, sessions, creds)

	if err := r.RunCycle(context.Background()); err != nil {
		t.Fatalf("reachable source should still count as a run, got %v", err)
	}

	st := r.Status()
	if st.LastSuccess {
		t.Error("failed cycle recorded as success")
	}
	if st.LastError == "" {
		t.Error("failed cycle recorded no error")
	}

	// The guard must be clear again for the next tick.
	src.listErr = nil
	if err := r.RunCycle(context.Background()); err != nil {
		t.Errorf("guard still held after a failed cycle: %v", err)
	}
}

func TestRunCycleRefusesOverlap(t *testing.T) {
	gate := make(chan struct{})
	src := &mockSource{listGate: gate, rooms: []source.Room{{Room: "101"}}}
	rooms, sessions, creds := newMockRooms(), newMockSessions(), newMockCredentials()
	r := newTestReconciler(src, rooms, sessions, creds)

	done := make(chan error)
	go func() { done <- r.RunCycle(context.Background()) }()

	// Wait until the first cycle is inside ListRooms, then trigger again.
	deadline := time.After(2 * time.Second)
	for r.Status().State != syncer.StateRunning {
		select {
		case <-deadline:
			t.Fatal("first cycle never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if err := r.RunCycle(context.Background()); !errors.Is(err, syncer.ErrCycleRunning) {
		t.Errorf("overlapping trigger error = %v, want ErrCycleRunning", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Errorf("first cycle should have completed: %v", err)
	}
}

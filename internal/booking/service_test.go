package booking

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/arashpm/intern-seat-reservation/internal/model"
    "github.com/arashpm/intern-seat-reservation/internal/repository"
)

// fakeCatalog is an in-memory SeatCatalog.
type fakeCatalog struct {
    mu    sync.Mutex
    seats map[uint64]*model.Seat
}

func newFakeCatalog(ids ...uint64) *fakeCatalog {
    c := &fakeCatalog{seats: make(map[uint64]*model.Seat)}
    for _, id := range ids {
        c.seats[id] = &model.Seat{ID: id, SeatNumber: "S", Location: "floor 1", Status: model.SeatAvailable}
    }
    return c
}

func (c *fakeCatalog) GetByID(_ context.Context, id uint64) (*model.Seat, error) {
    c.mu.Lock()
    defer c.mu.Unlock()
    s, ok := c.seats[id]
    if !ok {
        return nil, repository.ErrSeatNotFound
    }
    cp := *s
    return &cp, nil
}

// fakeStore is an in-memory ReservationStore that enforces the same
// uniqueness rules as the MySQL schema under a mutex, so racing
// creates really do collide.
type fakeStore struct {
    mu      sync.Mutex
    nextID  uint64
    rows    map[uint64]*model.Reservation
    catalog *fakeCatalog

    failSetStatus map[uint64]error // per-id injected SetStatus failures
}

func newFakeStore(c *fakeCatalog) *fakeStore {
    return &fakeStore{rows: make(map[uint64]*model.Reservation), catalog: c, failSetStatus: make(map[uint64]error)}
}

func (f *fakeStore) FindActiveByIntern(_ context.Context, internID uint64, date time.Time) (*model.Reservation, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.findActive(func(r *model.Reservation) bool {
        return r.InternID == internID && r.Date.Equal(date)
    }), nil
}

func (f *fakeStore) FindActiveBySeat(_ context.Context, seatID uint64, date time.Time) (*model.Reservation, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.findActive(func(r *model.Reservation) bool {
        return r.SeatID == seatID && r.Date.Equal(date)
    }), nil
}

func (f *fakeStore) findActive(match func(*model.Reservation) bool) *model.Reservation {
    for _, r := range f.rows {
        if r.Status == model.StatusActive && match(r) {
            cp := *r
            return &cp
        }
    }
    return nil
}

func (f *fakeStore) Create(_ context.Context, res *model.Reservation) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    for _, r := range f.rows {
        if r.Status != model.StatusActive || !r.Date.Equal(res.Date) {
            continue
        }
        if r.InternID == res.InternID {
            return repository.ErrInternTaken
        }
        if r.SeatID == res.SeatID {
            return repository.ErrSeatTaken
        }
    }
    f.nextID++
    res.ID = f.nextID
    res.CreatedAt = time.Now()
    res.UpdatedAt = res.CreatedAt
    cp := *res
    f.rows[res.ID] = &cp
    return nil
}

func (f *fakeStore) SetStatus(_ context.Context, id uint64, to model.Status) (*model.Reservation, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    if err, ok := f.failSetStatus[id]; ok {
        return nil, err
    }
    r, ok := f.rows[id]
    if !ok || r.Status != model.StatusActive {
        return nil, nil
    }
    r.Status = to
    r.UpdatedAt = time.Now()
    cp := *r
    return &cp, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    r, ok := f.rows[id]
    if !ok {
        return nil, nil
    }
    cp := *r
    return &cp, nil
}

func (f *fakeStore) GetDetail(_ context.Context, id uint64) (*model.ReservationDetail, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    r, ok := f.rows[id]
    if !ok {
        return nil, nil
    }
    return f.toDetail(r), nil
}

func (f *fakeStore) toDetail(r *model.Reservation) *model.ReservationDetail {
    d := &model.ReservationDetail{
        ID:        r.ID,
        SeatID:    r.SeatID,
        Date:      r.Date.Format(model.DateFormat),
        TimeSlot:  r.TimeSlot,
        Status:    r.Status,
        InternID:  r.InternID,
        CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
    }
    if s, ok := f.catalog.seats[r.SeatID]; ok {
        d.SeatNumber = s.SeatNumber
        d.Location = s.Location
    }
    return d
}

func (f *fakeStore) ListActive(_ context.Context) ([]model.Reservation, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    var out []model.Reservation
    for _, r := range f.rows {
        if r.Status == model.StatusActive {
            out = append(out, *r)
        }
    }
    return out, nil
}

func (f *fakeStore) ListByIntern(_ context.Context, internID uint64) ([]model.ReservationDetail, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := make([]model.ReservationDetail, 0)
    for _, r := range f.rows {
        if r.InternID == internID {
            out = append(out, *f.toDetail(r))
        }
    }
    return out, nil
}

func (f *fakeStore) List(_ context.Context, fl repository.ListFilter) ([]model.ReservationDetail, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := make([]model.ReservationDetail, 0)
    for _, r := range f.rows {
        if fl.Date != nil && !r.Date.Equal(*fl.Date) {
            continue
        }
        if fl.InternID != 0 && r.InternID != fl.InternID {
            continue
        }
        out = append(out, *f.toDetail(r))
    }
    return out, nil
}

// newTestService pins "now" so lead-time and expiry behavior is
// deterministic.
func newTestService(seatIDs ...uint64) (*Service, *fakeStore) {
    catalog := newFakeCatalog(seatIDs...)
    store := newFakeStore(catalog)
    svc := NewService(store, catalog)
    svc.now = func() time.Time {
        return time.Date(2025, 3, 8, 10, 0, 0, 0, time.Local)
    }
    return svc, store
}

func TestCreateReturnsResolvedDetail(t *testing.T) {
    svc, _ := newTestService(1)
    d, err := svc.Create(context.Background(), 7, 1, "2025-03-10", "morning")
    require.NoError(t, err)
    assert.Equal(t, "2025-03-10", d.Date)
    assert.Equal(t, model.SlotMorning, d.TimeSlot)
    assert.Equal(t, model.StatusActive, d.Status)
    assert.Equal(t, uint64(7), d.InternID)
    assert.Equal(t, "floor 1", d.Location)
}

func TestCreateValidation(t *testing.T) {
    svc, _ := newTestService(1)
    ctx := context.Background()

    _, err := svc.Create(ctx, 7, 1, "", "morning")
    assert.ErrorIs(t, err, ErrInvalidDate)

    _, err = svc.Create(ctx, 7, 1, "10/03/2025", "morning")
    assert.ErrorIs(t, err, ErrInvalidDate)

    _, err = svc.Create(ctx, 7, 1, "2025-03-10", "evening")
    assert.ErrorIs(t, err, ErrInvalidSlot)

    _, err = svc.Create(ctx, 7, 99, "2025-03-10", "morning")
    assert.ErrorIs(t, err, ErrSeatUnknown)

    // empty slot defaults to full-day
    d, err := svc.Create(ctx, 7, 1, "2025-03-10", "")
    require.NoError(t, err)
    assert.Equal(t, model.SlotFullDay, d.TimeSlot)
}

func TestCreateLeadTime(t *testing.T) {
    svc, _ := newTestService(1)
    ctx := context.Background()

    // 23:30 the night before: midnight of "today" is 30 minutes away.
    svc.now = func() time.Time { return time.Date(2025, 3, 9, 23, 30, 0, 0, time.Local) }
    _, err := svc.Create(ctx, 7, 1, "2025-03-10", "full-day")
    assert.ErrorIs(t, err, ErrTooSoon)

    // Same-day booking is always too late.
    svc.now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local) }
    _, err = svc.Create(ctx, 7, 1, "2025-03-10", "full-day")
    assert.ErrorIs(t, err, ErrTooSoon)

    // 01:00 two days ahead: plenty of lead time.
    svc.now = func() time.Time { return time.Date(2025, 3, 8, 1, 0, 0, 0, time.Local) }
    _, err = svc.Create(ctx, 7, 1, "2025-03-10", "full-day")
    assert.NoError(t, err)
}

func TestSequentialConflicts(t *testing.T) {
    svc, _ := newTestService(1, 2)
    ctx := context.Background()

    _, err := svc.Create(ctx, 7, 1, "2025-03-10", "full-day")
    require.NoError(t, err)

    // Same intern, same date, different seat.
    _, err = svc.Create(ctx, 7, 2, "2025-03-10", "full-day")
    assert.ErrorIs(t, err, ErrInternConflict)

    // Different intern, same seat, same date.
    _, err = svc.Create(ctx, 8, 1, "2025-03-10", "full-day")
    assert.ErrorIs(t, err, ErrSeatConflict)

    // Different date is fine.
    _, err = svc.Create(ctx, 7, 1, "2025-03-11", "full-day")
    assert.NoError(t, err)
}

func TestConcurrentCreateSameIntern(t *testing.T) {
    svc, _ := newTestService(1, 2)
    ctx := context.Background()

    errs := make([]error, 2)
    var wg sync.WaitGroup
    for i := 0; i < 2; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = svc.Create(ctx, 7, uint64(i+1), "2025-03-10", "full-day")
        }(i)
    }
    wg.Wait()

    ok, conflict := 0, 0
    for _, err := range errs {
        switch {
        case err == nil:
            ok++
        case errors.Is(err, ErrInternConflict):
            conflict++
        default:
            t.Fatalf("unexpected error: %v", err)
        }
    }
    assert.Equal(t, 1, ok, "exactly one create must win")
    assert.Equal(t, 1, conflict)
}

func TestConcurrentCreateSameSeat(t *testing.T) {
    svc, _ := newTestService(1)
    ctx := context.Background()

    errs := make([]error, 2)
    var wg sync.WaitGroup
    for i := 0; i < 2; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = svc.Create(ctx, uint64(7+i), 1, "2025-03-10", "full-day")
        }(i)
    }
    wg.Wait()

    ok, conflict := 0, 0
    for _, err := range errs {
        switch {
        case err == nil:
            ok++
        case errors.Is(err, ErrSeatConflict):
            conflict++
        default:
            t.Fatalf("unexpected error: %v", err)
        }
    }
    assert.Equal(t, 1, ok, "exactly one create must win")
    assert.Equal(t, 1, conflict)
}

func TestCancelAndRebook(t *testing.T) {
    svc, _ := newTestService(1, 2)
    ctx := context.Background()

    first, err := svc.Create(ctx, 7, 1, "2025-03-10", "full-day")
    require.NoError(t, err)

    _, err = svc.Create(ctx, 7, 2, "2025-03-10", "full-day")
    require.ErrorIs(t, err, ErrInternConflict)
    _, err = svc.Create(ctx, 8, 1, "2025-03-10", "full-day")
    require.ErrorIs(t, err, ErrSeatConflict)

    cancelled, err := svc.Cancel(ctx, 7, first.ID)
    require.NoError(t, err)
    assert.Equal(t, model.StatusCancelled, cancelled.Status)

    // Seat frees up for the other intern after the cancel.
    _, err = svc.Create(ctx, 8, 1, "2025-03-10", "full-day")
    assert.NoError(t, err)
}

func TestCancelNotFoundCases(t *testing.T) {
    svc, store := newTestService(1)
    ctx := context.Background()

    d, err := svc.Create(ctx, 7, 1, "2025-03-10", "full-day")
    require.NoError(t, err)

    // Unknown id.
    _, err = svc.Cancel(ctx, 7, 9999)
    assert.ErrorIs(t, err, ErrNotFound)

    // Someone else's reservation: same opaque not-found.
    _, err = svc.Cancel(ctx, 8, d.ID)
    assert.ErrorIs(t, err, ErrNotFound)

    // Already terminal: completing it first, then cancelling, is not a
    // silent no-op.
    _, err = store.SetStatus(ctx, d.ID, model.StatusCompleted)
    require.NoError(t, err)
    _, err = svc.Cancel(ctx, 7, d.ID)
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweepExpiresAndIsIdempotent(t *testing.T) {
    svc, store := newTestService(1, 2, 3)
    ctx := context.Background()

    require.NoError(t, store.Create(ctx, &model.Reservation{
        InternID: 7, SeatID: 1, Date: time.Date(2025, 3, 7, 0, 0, 0, 0, time.Local),
        TimeSlot: model.SlotMorning, Status: model.StatusActive,
    }))
    require.NoError(t, store.Create(ctx, &model.Reservation{
        InternID: 8, SeatID: 2, Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.Local),
        TimeSlot: model.SlotFullDay, Status: model.StatusActive,
    }))
    require.NoError(t, store.Create(ctx, &model.Reservation{
        InternID: 9, SeatID: 3, Date: time.Date(2025, 3, 9, 0, 0, 0, 0, time.Local),
        TimeSlot: model.SlotFullDay, Status: model.StatusActive,
    }))

    // now = 2025-03-08 10:00: the morning slot of the 7th is long past,
    // the full-day of the 8th still runs until midnight, the 9th is in
    // the future.
    var expired []uint64
    svc.OnExpired = func(r model.Reservation) { expired = append(expired, r.ID) }

    n, err := svc.ExpireDue(ctx)
    require.NoError(t, err)
    assert.Equal(t, 1, n)
    assert.Len(t, expired, 1)

    // Second immediate run finds nothing further to do.
    n, err = svc.ExpireDue(ctx)
    require.NoError(t, err)
    assert.Equal(t, 0, n)
}

func TestSweepSkipsFailingRecord(t *testing.T) {
    svc, store := newTestService(1, 2)
    ctx := context.Background()

    a := &model.Reservation{InternID: 7, SeatID: 1, Date: time.Date(2025, 3, 7, 0, 0, 0, 0, time.Local),
        TimeSlot: model.SlotFullDay, Status: model.StatusActive}
    b := &model.Reservation{InternID: 8, SeatID: 2, Date: time.Date(2025, 3, 7, 0, 0, 0, 0, time.Local),
        TimeSlot: model.SlotFullDay, Status: model.StatusActive}
    require.NoError(t, store.Create(ctx, a))
    require.NoError(t, store.Create(ctx, b))

    store.failSetStatus[a.ID] = errors.New("row unreachable")

    n, err := svc.ExpireDue(ctx)
    require.NoError(t, err, "one bad record must not abort the batch")
    assert.Equal(t, 1, n)

    got, _ := store.GetByID(ctx, b.ID)
    assert.Equal(t, model.StatusCompleted, got.Status)
}

func TestListingsApplyLazyRefresh(t *testing.T) {
    svc, store := newTestService(1)
    ctx := context.Background()

    r := &model.Reservation{InternID: 7, SeatID: 1, Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.Local),
        TimeSlot: model.SlotMorning, Status: model.StatusActive}
    require.NoError(t, store.Create(ctx, r))

    // Before noon the row lists as active.
    svc.now = func() time.Time { return time.Date(2025, 3, 8, 11, 0, 0, 0, time.Local) }
    out, err := svc.ListForIntern(ctx, 7)
    require.NoError(t, err)
    require.Len(t, out, 1)
    assert.Equal(t, model.StatusActive, out[0].Status)

    // After noon the same read shows it completed without any sweeper
    // tick in between.
    svc.now = func() time.Time { return time.Date(2025, 3, 8, 12, 1, 0, 0, time.Local) }
    out, err = svc.ListForIntern(ctx, 7)
    require.NoError(t, err)
    require.Len(t, out, 1)
    assert.Equal(t, model.StatusCompleted, out[0].Status)
}

func TestListAllFilters(t *testing.T) {
    svc, _ := newTestService(1, 2)
    ctx := context.Background()

    _, err := svc.Create(ctx, 7, 1, "2025-03-10", "full-day")
    require.NoError(t, err)
    _, err = svc.Create(ctx, 8, 2, "2025-03-11", "full-day")
    require.NoError(t, err)

    all, err := svc.ListAll(ctx, repository.ListFilter{})
    require.NoError(t, err)
    assert.Len(t, all, 2)

    day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
    byDate, err := svc.ListAll(ctx, repository.ListFilter{Date: &day})
    require.NoError(t, err)
    require.Len(t, byDate, 1)
    assert.Equal(t, uint64(7), byDate[0].InternID)

    byIntern, err := svc.ListAll(ctx, repository.ListFilter{InternID: 8})
    require.NoError(t, err)
    require.Len(t, byIntern, 1)
    assert.Equal(t, "2025-03-11", byIntern[0].Date)
}

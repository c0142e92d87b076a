package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"hotel-reservation/models"
)

// MemoryStore keeps every table in process. It is used when STORE_BACKEND=memory
// and by the service tests. Entities are copied on the way in and out so
// callers never share state with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	writes atomic.Int64
	now    func() time.Time

	rooms         map[uint]models.Room
	reservations  map[uint]models.Reservation
	discounts     map[uint]models.Discount
	services      map[uint]models.ExtraService
	audit         []models.AuditLog
	notifications []models.Notification

	nextID map[string]uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:          time.Now,
		rooms:        map[uint]models.Room{},
		reservations: map[uint]models.Reservation{},
		discounts:    map[uint]models.Discount{},
		services:     map[uint]models.ExtraService{},
		nextID:       map[string]uint{},
	}
}

// Writes counts successful mutations of rooms, reservations and discounts.
func (m *MemoryStore) Writes() int64 {
	return m.writes.Load()
}

// Store exposes the memory tables through the repository interfaces.
func (m *MemoryStore) Store() *Store {
	return &Store{
		Rooms:         memRooms{m},
		Reservations:  memReservations{m},
		Discounts:     memDiscounts{m},
		Services:      memServices{m},
		Audit:         memAudit{m},
		Notifications: memNotifications{m},
	}
}

func (m *MemoryStore) id(table string) uint {
	m.nextID[table]++
	return m.nextID[table]
}

func cloneReservation(r models.Reservation) models.Reservation {
	if r.ServiceIDs != nil {
		ids := make([]uint, len(r.ServiceIDs))
		copy(ids, r.ServiceIDs)
		r.ServiceIDs = ids
	}
	if r.DiscountID != nil {
		v := *r.DiscountID
		r.DiscountID = &v
	}
	if r.ActualCheckout != nil {
		v := *r.ActualCheckout
		r.ActualCheckout = &v
	}
	if r.PaymentRef != nil {
		v := *r.PaymentRef
		r.PaymentRef = &v
	}
	return r
}

func cloneDiscount(d models.Discount) models.Discount {
	if d.MinAmount != nil {
		v := *d.MinAmount
		d.MinAmount = &v
	}
	if d.MaxDiscountAmount != nil {
		v := *d.MaxDiscountAmount
		d.MaxDiscountAmount = &v
	}
	return d
}

// ---------------------------
// Rooms
// ---------------------------

type memRooms struct{ m *MemoryStore }

func (r memRooms) FindByID(_ context.Context, id uint) (*models.Room, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	room, ok := r.m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &room, nil
}

func (r memRooms) FindAll(_ context.Context) ([]models.Room, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]models.Room, 0, len(r.m.rooms))
	for _, room := range r.m.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memRooms) FindByNumber(_ context.Context, number string) (*models.Room, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, room := range r.m.rooms {
		if room.RoomNumber == number {
			return &room, nil
		}
	}
	return nil, ErrNotFound
}

func (r memRooms) FindByType(ctx context.Context, roomType string) ([]models.Room, error) {
	all, _ := r.FindAll(ctx)
	out := all[:0]
	for _, room := range all {
		if strings.EqualFold(room.Type, roomType) {
			out = append(out, room)
		}
	}
	return out, nil
}

func (r memRooms) Save(_ context.Context, room *models.Room) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, other := range r.m.rooms {
		if id != room.ID && other.RoomNumber == room.RoomNumber {
			return ErrDuplicate
		}
	}
	now := r.m.now()
	if room.ID == 0 {
		room.ID = r.m.id("rooms")
		room.CreatedAt = now
		room.Version = 1
	} else {
		stored, ok := r.m.rooms[room.ID]
		if !ok {
			return ErrNotFound
		}
		if stored.Version != room.Version {
			return ErrVersionConflict
		}
		room.Version++
	}
	room.UpdatedAt = now
	r.m.rooms[room.ID] = *room
	r.m.writes.Add(1)
	return nil
}

func (r memRooms) Delete(_ context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.rooms, id)
	r.m.writes.Add(1)
	return nil
}

func (r memRooms) CountByStatus(_ context.Context) (map[models.RoomStatus]int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := map[models.RoomStatus]int64{}
	for _, room := range r.m.rooms {
		out[room.Status]++
	}
	return out, nil
}

// ---------------------------
// Reservations
// ---------------------------

type memReservations struct{ m *MemoryStore }

func (r memReservations) filter(keep func(models.Reservation) bool) []models.Reservation {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]models.Reservation, 0)
	for _, res := range r.m.reservations {
		if keep(res) {
			out = append(out, cloneReservation(res))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memReservations) FindAll(_ context.Context) ([]models.Reservation, error) {
	return r.filter(func(models.Reservation) bool { return true }), nil
}

func (r memReservations) FindByID(_ context.Context, id uint) (*models.Reservation, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	res, ok := r.m.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	res = cloneReservation(res)
	return &res, nil
}

func (r memReservations) FindByRoom(_ context.Context, roomID uint) ([]models.Reservation, error) {
	return r.filter(func(res models.Reservation) bool { return res.RoomID == roomID }), nil
}

func (r memReservations) FindByClient(_ context.Context, clientID uint) ([]models.Reservation, error) {
	return r.filter(func(res models.Reservation) bool { return res.ClientID == clientID }), nil
}

func (r memReservations) FindByPeriod(_ context.Context, from, to time.Time) ([]models.Reservation, error) {
	return r.filter(func(res models.Reservation) bool { return res.Overlaps(from, to) }), nil
}

func (r memReservations) FindByStatus(_ context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	return r.filter(func(res models.Reservation) bool { return res.Status.In(statuses...) }), nil
}

func (r memReservations) Save(_ context.Context, res *models.Reservation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := r.m.now()
	if res.ID == 0 {
		res.ID = r.m.id("reservations")
		res.CreatedAt = now
		res.Version = 1
	} else {
		stored, ok := r.m.reservations[res.ID]
		if !ok {
			return ErrNotFound
		}
		if stored.Version != res.Version {
			return ErrVersionConflict
		}
		res.Version++
	}
	res.UpdatedAt = now
	r.m.reservations[res.ID] = cloneReservation(*res)
	r.m.writes.Add(1)
	return nil
}

func (r memReservations) DeleteByID(_ context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.reservations[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.reservations, id)
	r.m.writes.Add(1)
	return nil
}

func (r memReservations) CountByStatus(_ context.Context) (map[models.ReservationStatus]int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := map[models.ReservationStatus]int64{}
	for _, res := range r.m.reservations {
		out[res.Status]++
	}
	return out, nil
}

// ---------------------------
// Discounts
// ---------------------------

type memDiscounts struct{ m *MemoryStore }

func (r memDiscounts) FindByID(_ context.Context, id uint) (*models.Discount, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	d, ok := r.m.discounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	d = cloneDiscount(d)
	return &d, nil
}

func (r memDiscounts) FindByCode(_ context.Context, code string) (*models.Discount, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, d := range r.m.discounts {
		if strings.EqualFold(d.Code, code) {
			d = cloneDiscount(d)
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (r memDiscounts) FindAll(_ context.Context) ([]models.Discount, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]models.Discount, 0, len(r.m.discounts))
	for _, d := range r.m.discounts {
		out = append(out, cloneDiscount(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memDiscounts) Save(_ context.Context, d *models.Discount) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, other := range r.m.discounts {
		if id != d.ID && strings.EqualFold(other.Code, d.Code) {
			return ErrDuplicate
		}
	}
	now := r.m.now()
	if d.ID == 0 {
		d.ID = r.m.id("discounts")
		d.CreatedAt = now
		d.Version = 1
	} else {
		stored, ok := r.m.discounts[d.ID]
		if !ok {
			return ErrNotFound
		}
		if stored.Version != d.Version {
			return ErrVersionConflict
		}
		d.Version++
	}
	d.UpdatedAt = now
	r.m.discounts[d.ID] = cloneDiscount(*d)
	r.m.writes.Add(1)
	return nil
}

func (r memDiscounts) IncrementUsage(_ context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.discounts[id]
	if !ok {
		return ErrNotFound
	}
	if d.UsesCurrent >= d.UsesMax {
		return ErrUsageExhausted
	}
	d.UsesCurrent++
	d.Version++
	r.m.discounts[id] = d
	r.m.writes.Add(1)
	return nil
}

func (r memDiscounts) ReleaseUsage(_ context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.discounts[id]
	if !ok {
		return ErrNotFound
	}
	if d.UsesCurrent > 0 {
		d.UsesCurrent--
		d.Version++
		r.m.discounts[id] = d
		r.m.writes.Add(1)
	}
	return nil
}

// ---------------------------
// Service catalog
// ---------------------------

type memServices struct{ m *MemoryStore }

func (r memServices) FindByID(_ context.Context, id uint) (*models.ExtraService, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.services[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r memServices) FindByIDs(_ context.Context, ids []uint) (map[uint]models.ExtraService, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make(map[uint]models.ExtraService, len(ids))
	for _, id := range ids {
		if s, ok := r.m.services[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (r memServices) FindAll(_ context.Context, onlyActive bool) ([]models.ExtraService, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]models.ExtraService, 0, len(r.m.services))
	for _, s := range r.m.services {
		if onlyActive && !s.Active {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memServices) Save(_ context.Context, s *models.ExtraService) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, other := range r.m.services {
		if id != s.ID && strings.EqualFold(other.Name, s.Name) {
			return ErrDuplicate
		}
	}
	now := r.m.now()
	if s.ID == 0 {
		s.ID = r.m.id("services")
		s.CreatedAt = now
	} else if _, ok := r.m.services[s.ID]; !ok {
		return ErrNotFound
	}
	s.UpdatedAt = now
	r.m.services[s.ID] = *s
	return nil
}

// ---------------------------
// Audit and notifications
// ---------------------------

type memAudit struct{ m *MemoryStore }

func (r memAudit) Create(_ context.Context, entry *models.AuditLog) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	entry.ID = r.m.id("audit")
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.m.now()
	}
	r.m.audit = append(r.m.audit, *entry)
	return nil
}

func (r memAudit) Recent(_ context.Context, limit int) ([]models.AuditLog, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return lastN(r.m.audit, limit), nil
}

type memNotifications struct{ m *MemoryStore }

func (r memNotifications) Create(_ context.Context, n *models.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n.ID = r.m.id("notifications")
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.m.now()
	}
	r.m.notifications = append(r.m.notifications, *n)
	return nil
}

func (r memNotifications) Recent(_ context.Context, limit int) ([]models.Notification, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return lastN(r.m.notifications, limit), nil
}

// lastN returns up to limit entries, newest first.
func lastN[T any](items []T, limit int) []T {
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}
	out := make([]T, 0, limit)
	for i := len(items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, items[i])
	}
	return out
}

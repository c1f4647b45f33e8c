// Package testutil 提供 service 測試用的記憶體替身，語意對齊 MongoDB repository
package testutil

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"rewear/internal/core"
	fluentdModel "rewear/internal/database/fluentd/model"
	"rewear/internal/database/mongodb/model"
	"rewear/internal/database/mongodb/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Memory 三個 collection 共用一把鎖，交易替身才能整體快照
type Memory struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*model.User
	items    map[primitive.ObjectID]*model.Item
	swaps    map[primitive.ObjectID]*model.SwapRequest
	clock    time.Time
	failures map[string]error
	events   []fluentdModel.SwapEventLog
}

func NewMemory() *Memory {
	return &Memory{
		users:    map[primitive.ObjectID]*model.User{},
		items:    map[primitive.ObjectID]*model.Item{},
		swaps:    map[primitive.ObjectID]*model.SwapRequest{},
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		failures: map[string]error{},
	}
}

func (m *Memory) Users() *UserStore       { return &UserStore{m: m} }
func (m *Memory) Items() *ItemStore       { return &ItemStore{m: m} }
func (m *Memory) Swaps() *SwapStore       { return &SwapStore{m: m} }
func (m *Memory) Auditor() *Auditor       { return &Auditor{m: m} }
func (m *Memory) Transactor() *Transactor { return &Transactor{m: m, atomic: true} }

// NonAtomicTransactor 模擬 MONGODB__DISABLE_TRANSACTIONS
func (m *Memory) NonAtomicTransactor() *Transactor { return &Transactor{m: m} }

// FailOnce 下一次呼叫 op（例如 "users.AdjustPoints"）時回傳 err
func (m *Memory) FailOnce(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = err
}

// SwapEvents 已送出的稽核紀錄
func (m *Memory) SwapEvents() []fluentdModel.SwapEventLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

// 呼叫端需持有鎖
func (m *Memory) takeFailure(op string) error {
	if err, ok := m.failures[op]; ok {
		delete(m.failures, op)
		return err
	}
	return nil
}

// 每次建立往前推一毫秒，讓「新到舊」排序穩定
func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

// ─── Users ────────────────────────────────────────────────────────────────────

type UserStore struct{ m *Memory }

func (s *UserStore) Create(_ context.Context, user *model.User) (*model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.takeFailure("users.Create"); err != nil {
		return nil, err
	}
	for _, u := range s.m.users {
		if u.FirebaseUID == user.FirebaseUID || u.Email == user.Email {
			return nil, repository.ErrDuplicateKey
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := s.m.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	s.m.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (s *UserStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneUser(u), nil
}

func (s *UserStore) GetByFirebaseUID(_ context.Context, firebaseUID string) (*model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if u.FirebaseUID == firebaseUID {
			return cloneUser(u), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *UserStore) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []*model.User{}
	for _, id := range ids {
		if u, ok := s.m.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (s *UserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, patch model.UserPatch) (*model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	u.UpdatedAt = s.m.tick()
	return cloneUser(u), nil
}

func (s *UserStore) AdjustPoints(_ context.Context, id primitive.ObjectID, delta int64) (*model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.takeFailure("users.AdjustPoints"); err != nil {
		return nil, err
	}
	u, ok := s.m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if delta < 0 && u.Points < -delta {
		return nil, repository.ErrInsufficientPoints
	}
	u.Points += delta
	u.UpdatedAt = s.m.tick()
	return cloneUser(u), nil
}

func (s *UserStore) Promote(_ context.Context, id primitive.ObjectID, points int64) (*model.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	u.Role = core.RoleAdmin
	u.Points = points
	u.UpdatedAt = s.m.tick()
	return cloneUser(u), nil
}

// ─── Items ────────────────────────────────────────────────────────────────────

type ItemStore struct{ m *Memory }

func (s *ItemStore) Create(_ context.Context, item *model.Item) (*model.Item, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.takeFailure("items.Create"); err != nil {
		return nil, err
	}
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.Images == nil {
		item.Images = []string{}
	}
	now := s.m.tick()
	item.CreatedAt, item.UpdatedAt = now, now
	s.m.items[item.ID] = cloneItem(item)
	return cloneItem(item), nil
}

func (s *ItemStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.Item, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	item, ok := s.m.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneItem(item), nil
}

func (s *ItemStore) List(_ context.Context, filter model.ItemFilter) ([]*model.Item, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []*model.Item{}
	for _, item := range s.m.items {
		if filter.Matches(item) {
			out = append(out, cloneItem(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ItemStore) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.Item, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []*model.Item{}
	for _, id := range ids {
		if item, ok := s.m.items[id]; ok {
			out = append(out, cloneItem(item))
		}
	}
	return out, nil
}

func (s *ItemStore) Update(_ context.Context, id primitive.ObjectID, patch model.ItemPatch) (*model.Item, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	item, ok := s.m.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	patch.Apply(item)
	item.UpdatedAt = s.m.tick()
	return cloneItem(item), nil
}

func (s *ItemStore) SetApproval(_ context.Context, id primitive.ObjectID, approved bool) (*model.Item, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	item, ok := s.m.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if item.Status == core.ItemStatusSwapped {
		return nil, repository.ErrStatusConflict
	}
	item.Approved = approved
	item.Status = core.ItemStatusPending
	if approved {
		item.Status = core.ItemStatusAvailable
	}
	item.UpdatedAt = s.m.tick()
	return cloneItem(item), nil
}

func (s *ItemStore) TransitionStatus(_ context.Context, id primitive.ObjectID, from []core.ItemStatus, to core.ItemStatus) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.takeFailure("items.TransitionStatus"); err != nil {
		return err
	}
	item, ok := s.m.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if !slices.Contains(from, item.Status) {
		return repository.ErrStatusConflict
	}
	item.Status = to
	item.UpdatedAt = s.m.tick()
	return nil
}

func (s *ItemStore) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.items[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.m.items, id)
	return nil
}

func (s *ItemStore) CountByStatus(_ context.Context) ([]model.ItemCount, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	type key struct {
		status   core.ItemStatus
		approved bool
	}
	counts := map[key]int64{}
	for _, item := range s.m.items {
		counts[key{item.Status, item.Approved}]++
	}
	out := []model.ItemCount{}
	for k, n := range counts {
		out = append(out, model.ItemCount{Status: k.status, Approved: k.approved, Count: n})
	}
	return out, nil
}

// ─── Swap requests ────────────────────────────────────────────────────────────

type SwapStore struct{ m *Memory }

func (s *SwapStore) Create(_ context.Context, swap *model.SwapRequest) (*model.SwapRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if swap.ID.IsZero() {
		swap.ID = primitive.NewObjectID()
	}
	now := s.m.tick()
	swap.CreatedAt, swap.UpdatedAt = now, now
	s.m.swaps[swap.ID] = cloneSwap(swap)
	return cloneSwap(swap), nil
}

func (s *SwapStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.SwapRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	swap, ok := s.m.swaps[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneSwap(swap), nil
}

func (s *SwapStore) List(_ context.Context, filter model.SwapFilter) ([]*model.SwapRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []*model.SwapRequest{}
	for _, swap := range s.m.swaps {
		if filter.Matches(swap) {
			out = append(out, cloneSwap(swap))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *SwapStore) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to core.SwapStatus) (*model.SwapRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.takeFailure("swaps.TransitionStatus"); err != nil {
		return nil, err
	}
	swap, ok := s.m.swaps[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if swap.Status != from {
		return nil, repository.ErrStatusConflict
	}
	swap.Status = to
	swap.UpdatedAt = s.m.tick()
	return cloneSwap(swap), nil
}

func (s *SwapStore) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.swaps[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.m.swaps, id)
	return nil
}

func (s *SwapStore) CountByStatus(_ context.Context) ([]model.SwapCount, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	counts := map[core.SwapStatus]int64{}
	for _, swap := range s.m.swaps {
		counts[swap.Status]++
	}
	out := []model.SwapCount{}
	for status, n := range counts {
		out = append(out, model.SwapCount{Status: status, Count: n})
	}
	return out, nil
}

// ─── Transactor / Auditor ─────────────────────────────────────────────────────

// Transactor atomic 時以快照還原模擬 abort
type Transactor struct {
	m      *Memory
	atomic bool
}

func (t *Transactor) Atomic() bool { return t.atomic }

func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.atomic {
		return fn(ctx)
	}
	t.m.mu.Lock()
	snapshot := t.m.snapshot()
	t.m.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.m.mu.Lock()
		t.m.restore(snapshot)
		t.m.mu.Unlock()
		return err
	}
	return nil
}

type memorySnapshot struct {
	users map[primitive.ObjectID]*model.User
	items map[primitive.ObjectID]*model.Item
	swaps map[primitive.ObjectID]*model.SwapRequest
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		users: make(map[primitive.ObjectID]*model.User, len(m.users)),
		items: make(map[primitive.ObjectID]*model.Item, len(m.items)),
		swaps: make(map[primitive.ObjectID]*model.SwapRequest, len(m.swaps)),
	}
	for k, v := range m.users {
		s.users[k] = cloneUser(v)
	}
	for k, v := range m.items {
		s.items[k] = cloneItem(v)
	}
	for k, v := range m.swaps {
		s.swaps[k] = cloneSwap(v)
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.users, m.items, m.swaps = s.users, s.items, s.swaps
}

type Auditor struct{ m *Memory }

func (a *Auditor) LogSwapEvent(_ context.Context, event fluentdModel.SwapEventLog) error {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	a.m.events = append(a.m.events, event)
	return nil
}

// ─── Seed helpers ─────────────────────────────────────────────────────────────

// SeedUser 直接寫入使用者（不經 service）
func (m *Memory) SeedUser(name string, role core.Role, points int64) *model.User {
	u := &model.User{
		FirebaseUID: "uid-" + strings.ToLower(name),
		Email:       strings.ToLower(name) + "@rewear.test",
		Name:        name,
		Role:        role,
		Points:      points,
	}
	created, err := m.Users().Create(context.Background(), u)
	if err != nil {
		panic(err)
	}
	return created
}

// SeedItem 直接寫入商品
func (m *Memory) SeedItem(owner *model.User, title string, points int64, status core.ItemStatus, approved bool) *model.Item {
	item := &model.Item{
		Title:          title,
		Description:    title + " description",
		Category:       core.CategoryTops,
		Type:           "T-Shirt",
		Size:           core.SizeM,
		Condition:      core.ConditionGood,
		UploaderID:     owner.ID,
		UploaderName:   owner.Name,
		PointsRequired: points,
		Status:         status,
		Approved:       approved,
	}
	created, err := m.Items().Create(context.Background(), item)
	if err != nil {
		panic(err)
	}
	return created
}

// ErrInjected 測試注入用的錯誤
var ErrInjected = errors.New("injected failure")

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}

func cloneItem(i *model.Item) *model.Item {
	c := *i
	c.Tags = slices.Clone(i.Tags)
	c.Images = slices.Clone(i.Images)
	c.ImagePublicIDs = slices.Clone(i.ImagePublicIDs)
	return &c
}

func cloneSwap(s *model.SwapRequest) *model.SwapRequest {
	c := *s
	if s.OfferItemID != nil {
		id := *s.OfferItemID
		c.OfferItemID = &id
	}
	return &c
}

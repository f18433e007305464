// Package memstore is an in-memory implementation of the repository
// interfaces for service tests. WithinTx snapshots the whole store and
// restores it when the function fails, so tests can assert real
// all-or-nothing behavior, and FailNext injects a fault at a named
// operation to simulate a crash mid-transaction.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
)

// Store holds all in-memory state
type Store struct {
	mu sync.Mutex

	plans         map[uuid.UUID]*entities.Plan
	investments   map[uuid.UUID]*entities.Investment
	transactions  map[uuid.UUID]*entities.Transaction
	profiles      map[uuid.UUID]*entities.Profile
	adminLogs     []*entities.AdminLog
	adminUsers    map[string]*entities.AdminUser
	notifications map[uuid.UUID]*entities.Notification
	settings      map[string]*entities.SiteSetting

	failures map[string]error
	seq      int64
}

// New creates an empty store
func New() *Store {
	return &Store{
		plans:         make(map[uuid.UUID]*entities.Plan),
		investments:   make(map[uuid.UUID]*entities.Investment),
		transactions:  make(map[uuid.UUID]*entities.Transaction),
		profiles:      make(map[uuid.UUID]*entities.Profile),
		adminUsers:    make(map[string]*entities.AdminUser),
		notifications: make(map[uuid.UUID]*entities.Notification),
		settings:      make(map[string]*entities.SiteSetting),
		failures:      make(map[string]error),
	}
}

// FailNext makes the named operation fail once with err. Operation names
// are "<repo>.<method>" in lower case, e.g. "transactions.create".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) takeFailure(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

// nextSeq orders inserts that share a timestamp
func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

type snapshot struct {
	plans         map[uuid.UUID]*entities.Plan
	investments   map[uuid.UUID]*entities.Investment
	transactions  map[uuid.UUID]*entities.Transaction
	profiles      map[uuid.UUID]*entities.Profile
	adminLogs     []*entities.AdminLog
	adminUsers    map[string]*entities.AdminUser
	notifications map[uuid.UUID]*entities.Notification
	settings      map[string]*entities.SiteSetting
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		plans:         make(map[uuid.UUID]*entities.Plan, len(s.plans)),
		investments:   make(map[uuid.UUID]*entities.Investment, len(s.investments)),
		transactions:  make(map[uuid.UUID]*entities.Transaction, len(s.transactions)),
		profiles:      make(map[uuid.UUID]*entities.Profile, len(s.profiles)),
		adminLogs:     make([]*entities.AdminLog, len(s.adminLogs)),
		adminUsers:    make(map[string]*entities.AdminUser, len(s.adminUsers)),
		notifications: make(map[uuid.UUID]*entities.Notification, len(s.notifications)),
		settings:      make(map[string]*entities.SiteSetting, len(s.settings)),
	}
	for k, v := range s.plans {
		c := *v
		snap.plans[k] = &c
	}
	for k, v := range s.investments {
		c := *v
		snap.investments[k] = &c
	}
	for k, v := range s.transactions {
		c := *v
		snap.transactions[k] = &c
	}
	for k, v := range s.profiles {
		c := *v
		snap.profiles[k] = &c
	}
	copy(snap.adminLogs, s.adminLogs)
	for k, v := range s.adminUsers {
		c := *v
		snap.adminUsers[k] = &c
	}
	for k, v := range s.notifications {
		c := *v
		snap.notifications[k] = &c
	}
	for k, v := range s.settings {
		c := *v
		snap.settings[k] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.plans = snap.plans
	s.investments = snap.investments
	s.transactions = snap.transactions
	s.profiles = snap.profiles
	s.adminLogs = snap.adminLogs
	s.adminUsers = snap.adminUsers
	s.notifications = snap.notifications
	s.settings = snap.settings
}

// WithinTx implements repositories.TxRunner with snapshot/restore
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

// SeedProfile inserts a profile directly
func (s *Store) SeedProfile(p *entities.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.profiles[p.ID] = &c
}

// SeedPlan inserts a plan directly
func (s *Store) SeedPlan(p *entities.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	s.plans[p.ID] = &c
}

// SeedInvestment inserts an investment directly
func (s *Store) SeedInvestment(i *entities.Investment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *i
	s.investments[i.ID] = &c
}

// SeedTransaction inserts a transaction directly
func (s *Store) SeedTransaction(t *entities.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *t
	s.transactions[t.ID] = &c
}

// DeletePlanRow removes a plan directly, bypassing the guarded delete.
// Used to manufacture dangling investment references.
func (s *Store) DeletePlanRow(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, id)
}

// AdminLogs returns a copy of the audit trail, oldest first
func (s *Store) AdminLogs() []*entities.AdminLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.AdminLog, len(s.adminLogs))
	copy(out, s.adminLogs)
	return out
}

// Profile returns a copy of a profile row
func (s *Store) Profile(id uuid.UUID) *entities.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[id]; ok {
		c := *p
		return &c
	}
	return nil
}

// Transaction returns a copy of a transaction row
func (s *Store) Transaction(id uuid.UUID) *entities.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.transactions[id]; ok {
		c := *t
		return &c
	}
	return nil
}

// Transactions returns copies of all transaction rows
func (s *Store) Transactions() []*entities.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		c := *t
		out = append(out, &c)
	}
	return out
}

// Investment returns a copy of an investment row
func (s *Store) Investment(id uuid.UUID) *entities.Investment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.investments[id]; ok {
		c := *i
		return &c
	}
	return nil
}

// --- PlanRepository facet ---

// PlanRepo implements repositories.PlanRepository
type PlanRepo struct{ s *Store }

// Plans returns the plan repository facet
func (s *Store) Plans() *PlanRepo { return &PlanRepo{s} }

func (r *PlanRepo) Create(ctx context.Context, plan *entities.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("plans.create"); err != nil {
		return err
	}
	c := *plan
	r.s.plans[plan.ID] = &c
	return nil
}

func (r *PlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("plans.get"); err != nil {
		return nil, err
	}
	plan, ok := r.s.plans[id]
	if !ok {
		return nil, domainerrors.NotFoundError("PLAN")
	}
	c := *plan
	return &c, nil
}

func (r *PlanRepo) List(ctx context.Context) ([]*entities.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Plan, 0, len(r.s.plans))
	for _, p := range r.s.plans {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MinDeposit.LessThan(out[j].MinDeposit)
	})
	return out, nil
}

func (r *PlanRepo) Update(ctx context.Context, plan *entities.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[plan.ID]; !ok {
		return domainerrors.NotFoundError("PLAN")
	}
	c := *plan
	r.s.plans[plan.ID] = &c
	return nil
}

func (r *PlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[id]; !ok {
		return domainerrors.NotFoundError("PLAN")
	}
	delete(r.s.plans, id)
	return nil
}

func (r *PlanRepo) CountActiveInvestments(ctx context.Context, planID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, inv := range r.s.investments {
		if inv.PlanID == planID && inv.Status == entities.InvestmentStatusActive {
			count++
		}
	}
	return count, nil
}

// --- InvestmentRepository facet ---

// InvestmentRepo implements repositories.InvestmentRepository
type InvestmentRepo struct{ s *Store }

// Investments returns the investment repository facet
func (s *Store) Investments() *InvestmentRepo { return &InvestmentRepo{s} }

func (r *InvestmentRepo) Create(ctx context.Context, inv *entities.Investment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("investments.create"); err != nil {
		return err
	}
	c := *inv
	c.CreatedAt = time.Now().UTC()
	r.s.investments[inv.ID] = &c
	return nil
}

func (r *InvestmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.investments[id]
	if !ok {
		return nil, domainerrors.NotFoundError("INVESTMENT")
	}
	c := *inv
	return &c, nil
}

func (r *InvestmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Investment, 0)
	for _, inv := range r.s.investments {
		if inv.UserID == userID {
			c := *inv
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InvestmentRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("investments.list_active"); err != nil {
		return nil, err
	}
	out := make([]*entities.Investment, 0)
	for _, inv := range r.s.investments {
		if inv.UserID == userID && inv.Status == entities.InvestmentStatusActive {
			c := *inv
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

func (r *InvestmentRepo) ListExpiredActive(ctx context.Context, asOf time.Time, limit int) ([]*entities.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Investment, 0)
	for _, inv := range r.s.investments {
		if inv.Status == entities.InvestmentStatusActive && !inv.EndDate.After(asOf) {
			c := *inv
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EndDate.Before(out[j].EndDate)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InvestmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.InvestmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.investments[id]
	if !ok {
		return domainerrors.NotFoundError("INVESTMENT")
	}
	inv.Status = status
	return nil
}

func (r *InvestmentRepo) UpdateTotalReturn(ctx context.Context, id uuid.UUID, totalReturn decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.investments[id]
	if !ok {
		return domainerrors.NotFoundError("INVESTMENT")
	}
	inv.TotalReturn = totalReturn
	return nil
}

func (r *InvestmentRepo) ListActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	out := make([]uuid.UUID, 0)
	for _, inv := range r.s.investments {
		if inv.Status == entities.InvestmentStatusActive && !seen[inv.UserID] {
			seen[inv.UserID] = true
			out = append(out, inv.UserID)
		}
	}
	return out, nil
}

// --- TransactionRepository facet ---

// TransactionRepo implements repositories.TransactionRepository
type TransactionRepo struct{ s *Store }

// TransactionsRepo returns the transaction repository facet
func (s *Store) TransactionsRepo() *TransactionRepo { return &TransactionRepo{s} }

func (r *TransactionRepo) Create(ctx context.Context, tx *entities.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("transactions.create"); err != nil {
		return err
	}
	c := *tx
	c.CreatedAt = time.Now().UTC().Add(time.Duration(r.s.nextSeq()) * time.Microsecond)
	r.s.transactions[tx.ID] = &c
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx, ok := r.s.transactions[id]
	if !ok {
		return nil, domainerrors.NotFoundError("TRANSACTION")
	}
	c := *tx
	return &c, nil
}

func (r *TransactionRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Transaction, 0)
	for _, tx := range r.s.transactions {
		if tx.UserID == userID {
			c := *tx
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, limit, offset), nil
}

func (r *TransactionRepo) ListByStatus(ctx context.Context, status entities.TransactionStatus, limit, offset int) ([]*entities.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Transaction, 0)
	for _, tx := range r.s.transactions {
		if tx.Status == status {
			c := *tx
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return paginate(out, limit, offset), nil
}

func (r *TransactionRepo) List(ctx context.Context, limit, offset int) ([]*entities.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Transaction, 0, len(r.s.transactions))
	for _, tx := range r.s.transactions {
		c := *tx
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, limit, offset), nil
}

func (r *TransactionRepo) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("transactions.update_status"); err != nil {
		return 0, err
	}
	tx, ok := r.s.transactions[id]
	if !ok || tx.Status != entities.TransactionStatusPending {
		return 0, nil
	}
	tx.Status = status
	return 1, nil
}

func (r *TransactionRepo) SumCompletedByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, tx := range r.s.transactions {
		if tx.UserID != userID || tx.Status != entities.TransactionStatusCompleted {
			continue
		}
		switch tx.Type {
		case entities.TransactionTypeWithdrawal, entities.TransactionTypeInvestment, entities.TransactionTypeSubscription:
			sum = sum.Sub(tx.Amount)
		default:
			sum = sum.Add(tx.Amount)
		}
	}
	return sum, nil
}

func paginate(list []*entities.Transaction, limit, offset int) []*entities.Transaction {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

// --- ProfileRepository facet ---

// ProfileRepo implements repositories.ProfileRepository
type ProfileRepo struct{ s *Store }

// Profiles returns the profile repository facet
func (s *Store) Profiles() *ProfileRepo { return &ProfileRepo{s} }

func (r *ProfileRepo) getLocked(id uuid.UUID) (*entities.Profile, error) {
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, domainerrors.NotFoundError("PROFILE")
	}
	c := *p
	return &c, nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("profiles.get"); err != nil {
		return nil, err
	}
	return r.getLocked(id)
}

func (r *ProfileRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("profiles.get_for_update"); err != nil {
		return nil, err
	}
	return r.getLocked(id)
}

func (r *ProfileRepo) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("profiles.update_balance"); err != nil {
		return err
	}
	p, ok := r.s.profiles[id]
	if !ok {
		return domainerrors.NotFoundError("PROFILE")
	}
	p.Balance = balance
	return nil
}

func (r *ProfileRepo) UpdateProfit(ctx context.Context, id uuid.UUID, profit decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("profiles.update_profit"); err != nil {
		return err
	}
	p, ok := r.s.profiles[id]
	if !ok {
		return domainerrors.NotFoundError("PROFILE")
	}
	p.Profit = profit
	return nil
}

func (r *ProfileRepo) UpdateRefBonus(ctx context.Context, id uuid.UUID, refBonus decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return domainerrors.NotFoundError("PROFILE")
	}
	p.RefBonus = refBonus
	return nil
}

func (r *ProfileRepo) UpdateFinancials(ctx context.Context, id uuid.UUID, req *entities.AdjustFinancialsRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return domainerrors.NotFoundError("PROFILE")
	}
	if req.Balance != nil {
		p.Balance = *req.Balance
	}
	if req.Profit != nil {
		p.Profit = *req.Profit
	}
	if req.Bonus != nil {
		p.Bonus = *req.Bonus
	}
	if req.RefBonus != nil {
		p.RefBonus = *req.RefBonus
	}
	return nil
}

func (r *ProfileRepo) List(ctx context.Context, limit, offset int) ([]*entities.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProfileRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]uuid.UUID, 0, len(r.s.profiles))
	for id := range r.s.profiles {
		out = append(out, id)
	}
	return out, nil
}

// --- AdminLogRepository facet ---

// AdminLogRepo implements repositories.AdminLogRepository
type AdminLogRepo struct{ s *Store }

// AdminLogsRepo returns the admin log repository facet
func (s *Store) AdminLogsRepo() *AdminLogRepo { return &AdminLogRepo{s} }

func (r *AdminLogRepo) Create(ctx context.Context, log *entities.AdminLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("admin_logs.create"); err != nil {
		return err
	}
	c := *log
	c.CreatedAt = time.Now().UTC()
	r.s.adminLogs = append(r.s.adminLogs, &c)
	return nil
}

func (r *AdminLogRepo) List(ctx context.Context, limit, offset int) ([]*entities.AdminLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.AdminLog, len(r.s.adminLogs))
	copy(out, r.s.adminLogs)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- AdminUserRepository facet ---

// AdminUserRepo implements repositories.AdminUserRepository
type AdminUserRepo struct{ s *Store }

// AdminUsers returns the admin user repository facet
func (s *Store) AdminUsers() *AdminUserRepo { return &AdminUserRepo{s} }

func (r *AdminUserRepo) GetByEmail(ctx context.Context, email string) (*entities.AdminUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	admin, ok := r.s.adminUsers[email]
	if !ok {
		return nil, domainerrors.NotFoundError("ADMIN_USER")
	}
	c := *admin
	return &c, nil
}

func (r *AdminUserRepo) Create(ctx context.Context, admin *entities.AdminUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *admin
	r.s.adminUsers[admin.Email] = &c
	return nil
}

// --- NotificationRepository facet ---

// NotificationRepo implements repositories.NotificationRepository
type NotificationRepo struct{ s *Store }

// Notifications returns the notification repository facet
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s} }

func (r *NotificationRepo) CreateBatch(ctx context.Context, notifications []*entities.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure("notifications.create_batch"); err != nil {
		return err
	}
	for _, n := range notifications {
		c := *n
		c.CreatedAt = time.Now().UTC()
		r.s.notifications[n.ID] = &c
	}
	return nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.Notification, 0)
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return domainerrors.NotFoundError("NOTIFICATION")
	}
	n.Read = true
	return nil
}

// --- SettingsRepository facet ---

// SettingsRepo implements repositories.SettingsRepository
type SettingsRepo struct{ s *Store }

// Settings returns the settings repository facet
func (s *Store) Settings() *SettingsRepo { return &SettingsRepo{s} }

func (r *SettingsRepo) Get(ctx context.Context, key string) (*entities.SiteSetting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	setting, ok := r.s.settings[key]
	if !ok {
		return nil, domainerrors.NotFoundError("SETTING")
	}
	c := *setting
	return &c, nil
}

func (r *SettingsRepo) Upsert(ctx context.Context, setting *entities.SiteSetting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *setting
	c.UpdatedAt = time.Now().UTC()
	r.s.settings[setting.Key] = &c
	return nil
}

// --- events.Publisher fake ---

// RecordingPublisher captures published events for assertions
type RecordingPublisher struct {
	mu     sync.Mutex
	events []entities.ChangeEvent
}

// NewRecordingPublisher creates an empty recording publisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish records the event
func (p *RecordingPublisher) Publish(ctx context.Context, event entities.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns all recorded events
func (p *RecordingPublisher) Events() []entities.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entities.ChangeEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventsOfType returns recorded events matching the type
func (p *RecordingPublisher) EventsOfType(t entities.EventType) []entities.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entities.ChangeEvent, 0)
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

package services

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"ride-dispatch/internal/dispatch-service/core/domain/model"
	"ride-dispatch/internal/dispatch-service/core/myerrors"
	"ride-dispatch/internal/mylogger"
)

func testLogger() mylogger.Logger {
	return mylogger.NewWithWriter(mylogger.LevelError, io.Discard)
}

// fakeUserRepo keeps users, roles and driver statuses in maps.
type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]model.User
	roles    map[uuid.UUID]model.Role
	statuses map[uuid.UUID]model.DriverStatus
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uuid.UUID]model.User),
		roles:    make(map[uuid.UUID]model.Role),
		statuses: make(map[uuid.UUID]model.DriverStatus),
	}
}

func (f *fakeUserRepo) addUser(role model.Role, priority float64) uuid.UUID {
	id := uuid.New()
	f.users[id] = model.User{ID: id, Name: string(role), Priority: priority, IsActive: true}
	f.roles[id] = role
	if role == model.RoleDriver {
		f.statuses[id] = model.DriverStatus{ID: uuid.New(), DriverID: id, IsOnline: true, IsFree: true}
	}
	return id
}

func (f *fakeUserRepo) FindActive(ctx context.Context, id uuid.UUID) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.IsDeleted {
		return model.User{}, myerrors.NotFound("user not exists")
	}
	return u, nil
}

func (f *fakeUserRepo) IsInRole(ctx context.Context, id uuid.UUID, role model.Role) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[id] == role, nil
}

func (f *fakeUserRepo) FindDriverStatus(ctx context.Context, driverID uuid.UUID) (model.DriverStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.statuses[driverID]
	if !ok {
		return model.DriverStatus{}, myerrors.NotFound("driver status not exists")
	}
	return s, nil
}

func (f *fakeUserRepo) ApplyDriverMiss(ctx context.Context, driverID uuid.UUID, fromPriority float64, penalty model.DriverPenalty) (model.User, model.DriverStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.statuses[driverID]
	if !ok {
		return model.User{}, model.DriverStatus{}, myerrors.NotFound("driver status not exists")
	}
	if f.users[driverID].Priority != fromPriority {
		return model.User{}, model.DriverStatus{}, myerrors.InvalidState("driver priority changed concurrently")
	}
	s.IsOnline = false
	s.IsFree = false
	f.statuses[driverID] = s

	u := f.users[driverID]
	u.Priority = penalty.Priority
	if penalty.Deactivated {
		u.IsActive = false
	}
	u.TotalRequest++
	u.DeclineRequest++
	f.users[driverID] = u

	return u, s, nil
}

// fakeLedger backs both the ledger port and the refund paths of the request
// and booking fakes, so balance and transaction log can be asserted together.
type fakeLedger struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]model.Wallet
	txns    []model.WalletTransaction
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{wallets: make(map[uuid.UUID]model.Wallet)}
}

func (f *fakeLedger) addWallet(userID uuid.UUID, balance int64) {
	f.wallets[userID] = model.Wallet{ID: uuid.New(), UserID: userID, TotalMoney: balance}
}

func (f *fakeLedger) credit(c model.CreditEffect) (model.Wallet, model.WalletTransaction, error) {
	w, ok := f.wallets[c.UserID]
	if !ok {
		return model.Wallet{}, model.WalletTransaction{}, myerrors.WalletNotFound("wallet not exists")
	}
	w.TotalMoney += c.Amount
	f.wallets[c.UserID] = w

	txn := model.WalletTransaction{
		ID:         uuid.New(),
		WalletID:   w.ID,
		TotalMoney: c.Amount,
		Type:       c.Type,
		Status:     model.WalletTransactionSuccess,
	}
	f.txns = append(f.txns, txn)
	return w, txn, nil
}

func (f *fakeLedger) Credit(ctx context.Context, userID uuid.UUID, amount int64, txnType model.TypeWalletTransaction) (model.Wallet, model.WalletTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.credit(model.CreditEffect{UserID: userID, Amount: amount, Type: txnType})
}

func (f *fakeLedger) FindWallet(ctx context.Context, userID uuid.UUID) (model.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[userID]
	if !ok {
		return model.Wallet{}, myerrors.WalletNotFound("wallet not exists")
	}
	return w, nil
}

// sum of all successful transactions, for the ledger invariant checks.
func (f *fakeLedger) txnSum() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, t := range f.txns {
		if t.Status == model.WalletTransactionSuccess {
			total += t.TotalMoney
		}
	}
	return total
}

type fakeSearchRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]model.SearchRequest
	vehicles map[uuid.UUID]model.BookingVehicle
	onBehalf map[uuid.UUID]model.CustomerBookedOnBehalf
	ledger   *fakeLedger
}

func newFakeSearchRequestRepo(ledger *fakeLedger) *fakeSearchRequestRepo {
	return &fakeSearchRequestRepo{
		requests: make(map[uuid.UUID]model.SearchRequest),
		vehicles: make(map[uuid.UUID]model.BookingVehicle),
		onBehalf: make(map[uuid.UUID]model.CustomerBookedOnBehalf),
		ledger:   ledger,
	}
}

func (f *fakeSearchRequestRepo) Create(ctx context.Context, req model.SearchRequest, vehicle model.BookingVehicle, onBehalf *model.CustomerBookedOnBehalf) (model.SearchRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vehicles[vehicle.ID] = vehicle
	if onBehalf != nil {
		f.onBehalf[onBehalf.ID] = *onBehalf
	}
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeSearchRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (model.SearchRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok || r.IsDeleted {
		return model.SearchRequest{}, myerrors.NotFound("search request not exists")
	}
	return r, nil
}

func (f *fakeSearchRequestRepo) FindForCustomer(ctx context.Context, id, customerID uuid.UUID) (model.SearchRequest, error) {
	r, err := f.FindByID(ctx, id)
	if err != nil {
		return model.SearchRequest{}, err
	}
	if r.CustomerID != customerID {
		return model.SearchRequest{}, myerrors.NotFound("search request not exists")
	}
	return r, nil
}

func (f *fakeSearchRequestRepo) LatestProcessing(ctx context.Context, customerID uuid.UUID) (*model.SearchRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.SearchRequest
	for _, r := range f.requests {
		if r.CustomerID != customerID || r.Status != model.SearchRequestStatusProcessing || r.IsDeleted {
			continue
		}
		if latest == nil || r.DateCreated.After(latest.DateCreated) {
			c := r
			latest = &c
		}
	}
	return latest, nil
}

func (f *fakeSearchRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SearchRequestStatus) (model.SearchRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return model.SearchRequest{}, myerrors.NotFound("search request not exists")
	}
	if r.Status != from {
		return model.SearchRequest{}, myerrors.InvalidState("search request status not suitable")
	}
	r.Status = to
	f.requests[id] = r
	return r, nil
}

func (f *fakeSearchRequestRepo) CancelAndRefund(ctx context.Context, id uuid.UUID, credit model.CreditEffect) (model.SearchRequest, model.Wallet, model.WalletTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return model.SearchRequest{}, model.Wallet{}, model.WalletTransaction{}, myerrors.NotFound("search request not exists")
	}
	if r.Status != model.SearchRequestStatusProcessing {
		return model.SearchRequest{}, model.Wallet{}, model.WalletTransaction{}, myerrors.InvalidState("search request status not suitable")
	}

	f.ledger.mu.Lock()
	wallet, txn, err := f.ledger.credit(credit)
	f.ledger.mu.Unlock()
	if err != nil {
		return model.SearchRequest{}, model.Wallet{}, model.WalletTransaction{}, err
	}

	r.Status = model.SearchRequestStatusCancel
	f.requests[id] = r
	return r, wallet, txn, nil
}

func (f *fakeSearchRequestRepo) Associations(ctx context.Context, req model.SearchRequest) (model.BookingVehicle, *model.CustomerBookedOnBehalf, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vehicle := f.vehicles[req.VehicleID]
	if req.OnBehalfID == nil {
		return vehicle, nil, nil
	}
	ob := f.onBehalf[*req.OnBehalfID]
	return vehicle, &ob, nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]model.Booking
	cancels  map[uuid.UUID]model.BookingCancel
	ledger   *fakeLedger
}

func newFakeBookingRepo(ledger *fakeLedger) *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]model.Booking),
		cancels:  make(map[uuid.UUID]model.BookingCancel),
		ledger:   ledger,
	}
}

func (f *fakeBookingRepo) Create(ctx context.Context, b model.Booking) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, myerrors.NotFound("booking not exists")
	}
	return b, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, b model.Booking, from model.BookingStatus) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.bookings[b.ID]
	if !ok {
		return model.Booking{}, myerrors.NotFound("booking not exists")
	}
	if current.Status != from {
		return model.Booking{}, myerrors.InvalidState("booking status not suitable")
	}
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeBookingRepo) SetCheckInNote(ctx context.Context, id uuid.UUID, note string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, myerrors.NotFound("booking not exists")
	}
	b.CheckInNote = note
	f.bookings[id] = b
	return b, nil
}

func (f *fakeBookingRepo) SetCheckOutNote(ctx context.Context, id uuid.UUID, note string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, myerrors.NotFound("booking not exists")
	}
	b.CheckOutNote = note
	f.bookings[id] = b
	return b, nil
}

func (f *fakeBookingRepo) ExistsNotComplete(ctx context.Context, driverID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.DriverID == driverID && !b.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingRepo) CancelWithRefund(ctx context.Context, b model.Booking, from model.BookingStatus, record model.BookingCancel, credit model.CreditEffect) (model.Booking, model.Wallet, model.WalletTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.bookings[b.ID]
	if !ok {
		return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, myerrors.NotFound("booking not exists")
	}
	if current.Status != from {
		if current.Status.Cancelled() {
			return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, myerrors.AlreadyCancelled("booking has already been cancelled")
		}
		return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, myerrors.InvalidState("booking status not suitable")
	}

	f.ledger.mu.Lock()
	wallet, txn, err := f.ledger.credit(credit)
	f.ledger.mu.Unlock()
	if err != nil {
		return model.Booking{}, model.Wallet{}, model.WalletTransaction{}, err
	}

	f.bookings[b.ID] = b
	f.cancels[b.ID] = record
	return b, wallet, txn, nil
}

func (f *fakeBookingRepo) FindCancelByBookingID(ctx context.Context, bookingID uuid.UUID) (model.BookingCancel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cancels[bookingID]
	if !ok {
		return model.BookingCancel{}, myerrors.NotFound("booking cancel not exists")
	}
	return c, nil
}

type publishedEvent struct {
	Topic      string
	Recipients []uuid.UUID
	Payload    any
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
	fail   bool
}

func (f *fakeNotifier) Publish(ctx context.Context, topic string, recipients []uuid.UUID, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return myerrors.DependencyFailure("bus unavailable", nil)
	}
	f.events = append(f.events, publishedEvent{Topic: topic, Recipients: recipients, Payload: payload})
	return nil
}

func (f *fakeNotifier) Close() error { return nil }

func (f *fakeNotifier) topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Topic
	}
	return out
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"elitetransport/internal/domain"
	"elitetransport/internal/domain/models"
	"elitetransport/internal/repositories"
	"elitetransport/internal/utils"
)

// BookingService finalizes paid bookings: it verifies payment, proves lock
// ownership, inserts booking rows atomically per seat, and fans out the
// best-effort side effects (receipt, SMS).
type BookingService struct {
	Trips      repositories.TripRepository
	Buses      repositories.BusRepository
	Routes     repositories.RouteRepository
	Locks      repositories.SeatLockRepository
	Bookings   repositories.BookingRepository
	Passengers repositories.PassengerRepository
	Receipts   repositories.ReceiptRepository

	// Outbound calls, injectable in tests.
	VerifyPayment   func(ctx context.Context, ref string) (PaystackVerification, error)
	GenerateReceipt func(ctx context.Context, req ReceiptRequest) (ReceiptResult, error)
	SendSMS         func(ctx context.Context, phone, message string) error

	RequestID string
}

// ConfirmRequest is the finalization input.
type ConfirmRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	NokName   string `json:"nokName"`
	NokPhone  string `json:"nokPhone"`

	BusID       int64    `json:"busId"`
	TripID      *int64   `json:"tripId"`
	Seats       []string `json:"seats"`
	Price       float64  `json:"price"`
	UnitPrice   float64  `json:"unitPrice"`
	LockID      string   `json:"lockId"`
	PaystackRef string   `json:"paystackRef"`
}

// ConfirmResult is the confirmation payload returned to clients.
type ConfirmResult struct {
	BookingID     string   `json:"booking_id"`
	BookingIDs    []string `json:"booking_ids"`
	PassengerName string   `json:"passenger_name"`
	RouteName     string   `json:"route_name"`
	BusName       string   `json:"bus_name"`
	Seat          string   `json:"seat"`
	Seats         []string `json:"seats"`
	SeatCount     int      `json:"seat_count"`
	Price         float64  `json:"price"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	Status        string   `json:"status"`
	ReceiptURL    string   `json:"receipt_url,omitempty"`
	Duplicate     bool     `json:"duplicate,omitempty"`
}

func bookingRef(id int64) string {
	return fmt.Sprintf("ELITE-%d", id)
}

// Confirm runs the finalization algorithm. It is idempotent over the
// processor reference: retries rebuild the original confirmation without
// re-charging, re-inserting, or re-notifying.
func (s BookingService) Confirm(ctx context.Context, req ConfirmRequest) (ConfirmResult, error) {
	var out ConfirmResult

	ref := strings.TrimSpace(req.PaystackRef)
	if ref == "" {
		return out, domain.ValidationError{Field: "paystackRef", Msg: "missing payment reference"}
	}
	if strings.TrimSpace(req.LockID) == "" {
		return out, domain.ValidationError{Field: "lockId", Msg: "missing lock id"}
	}

	trip, err := s.Trips.Resolve(req.BusID, req.TripID)
	if err != nil {
		return out, err
	}
	var resolvedTrip *int64
	if trip != nil {
		resolvedTrip = &trip.ID
	}

	bus, err := s.Buses.GetByID(req.BusID)
	if err != nil {
		return out, err
	}

	seats, err := s.normalizeSeats(req.Seats, bus.Capacity)
	if err != nil {
		return out, err
	}

	// Idempotency: a reference that already produced bookings returns the
	// same confirmation.
	existing, err := s.Bookings.FindByRefPrefix(ref)
	if err != nil {
		return out, err
	}
	if len(existing) > 0 {
		return s.rebuildConfirmation(bus, existing)
	}

	verification, err := s.VerifyPayment(ctx, ref)
	if err != nil {
		return out, err
	}
	if req.Price > 0 && utils.ToMinorUnits(req.Price) != verification.Amount {
		return out, domain.PaymentError{Msg: fmt.Sprintf(
			"payment amount mismatch: expected %d got %d", utils.ToMinorUnits(req.Price), verification.Amount)}
	}

	// Lock ownership proof before any row is written.
	lockIDs := make([]int64, 0, len(seats))
	for _, seat := range seats {
		lock, found, err := s.Locks.FindActive(req.BusID, resolvedTrip, seat)
		if err != nil {
			return out, err
		}
		if !found || lock.LockedBy != strings.TrimSpace(req.LockID) {
			return out, domain.LockExpiredError{Seat: seat}
		}
		lockIDs = append(lockIDs, lock.ID)
	}

	passengerID, err := s.Passengers.Insert(models.Passenger{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		NokName:   req.NokName,
		NokPhone:  req.NokPhone,
	})
	if err != nil {
		return out, err
	}

	unit := req.UnitPrice
	if unit <= 0 && len(seats) > 0 {
		unit = req.Price / float64(len(seats))
	}

	insertedIDs, err := s.insertSeats(passengerID, req.BusID, resolvedTrip, seats, unit, ref, models.BookingStatusConfirmed)
	if err != nil {
		return out, err
	}

	if err := s.Locks.DeleteByIDs(lockIDs); err != nil {
		utils.LogEvent(s.RequestID, "booking", "lock_cleanup", fmt.Sprintf("ref=%s err=%v", ref, err))
	}

	s.refreshAvailableSeats(bus, resolvedTrip)

	receiptURL := s.fanOutSideEffects(ctx, bus, trip, insertedIDs, seats, req, unit*float64(len(seats)))

	out = ConfirmResult{
		BookingID:     bookingRef(insertedIDs[0]),
		BookingIDs:    bookingRefs(insertedIDs),
		PassengerName: strings.TrimSpace(req.FirstName + " " + req.LastName),
		RouteName:     s.routeName(bus),
		BusName:       bus.Name,
		Seat:          seats[0],
		Seats:         seats,
		SeatCount:     len(seats),
		Price:         req.Price,
		Phone:         req.Phone,
		Email:         req.Email,
		Status:        models.BookingStatusConfirmed,
		ReceiptURL:    receiptURL,
	}
	return out, nil
}

// ManualRequest is an admin booking without payment.
type ManualRequest struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	BusID     int64    `json:"busId"`
	TripID    *int64   `json:"tripId"`
	Seats     []string `json:"seats"`
	UnitPrice float64  `json:"unitPrice"`
}

// ManualBook performs the same atomic seat insertion as Confirm but without
// payment; it still refuses seats that are booked or actively locked.
func (s BookingService) ManualBook(ctx context.Context, req ManualRequest) (ConfirmResult, error) {
	var out ConfirmResult

	trip, err := s.Trips.Resolve(req.BusID, req.TripID)
	if err != nil {
		return out, err
	}
	var resolvedTrip *int64
	if trip != nil {
		resolvedTrip = &trip.ID
	}

	bus, err := s.Buses.GetByID(req.BusID)
	if err != nil {
		return out, err
	}
	seats, err := s.normalizeSeats(req.Seats, bus.Capacity)
	if err != nil {
		return out, err
	}

	for _, seat := range seats {
		if _, found, err := s.Locks.FindActive(req.BusID, resolvedTrip, seat); err != nil {
			return out, err
		} else if found {
			return out, domain.SeatLockedError{Seat: seat}
		}
	}

	passengerID, err := s.Passengers.Insert(models.Passenger{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		return out, err
	}

	unit := req.UnitPrice
	if unit <= 0 {
		if trip != nil {
			unit = trip.Price
		} else {
			unit = bus.Price
		}
	}

	ref := fmt.Sprintf("manual_%d", time.Now().UnixNano())
	insertedIDs, err := s.insertSeats(passengerID, req.BusID, resolvedTrip, seats, unit, ref, models.BookingStatusConfirmed)
	if err != nil {
		return out, err
	}

	s.refreshAvailableSeats(bus, resolvedTrip)

	total := unit * float64(len(seats))
	receiptURL := s.fanOutSideEffects(ctx, bus, trip, insertedIDs, seats, ConfirmRequest{
		FirstName: req.FirstName, LastName: req.LastName,
		Email: req.Email, Phone: req.Phone,
	}, total)

	out = ConfirmResult{
		BookingID:     bookingRef(insertedIDs[0]),
		BookingIDs:    bookingRefs(insertedIDs),
		PassengerName: strings.TrimSpace(req.FirstName + " " + req.LastName),
		RouteName:     s.routeName(bus),
		BusName:       bus.Name,
		Seat:          seats[0],
		Seats:         seats,
		SeatCount:     len(seats),
		Price:         total,
		Phone:         req.Phone,
		Email:         req.Email,
		Status:        models.BookingStatusConfirmed,
		ReceiptURL:    receiptURL,
	}
	return out, nil
}

// HandleChargeSuccess is the webhook path: best-effort confirm by reference,
// then generate the receipt and SMS if the synchronous path never did.
// A receipt row already existing means the notification went out once;
// no second SMS is sent.
func (s BookingService) HandleChargeSuccess(ctx context.Context, ref string) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return
	}

	if _, err := s.Bookings.MarkConfirmedByRef(ref); err != nil {
		utils.LogEvent(s.RequestID, "webhook", "mark_confirmed", fmt.Sprintf("ref=%s err=%v", ref, err))
	}

	bookings, err := s.Bookings.FindByRefPrefix(ref)
	if err != nil || len(bookings) == 0 {
		return
	}
	first := bookings[0]

	if _, found, err := s.Receipts.GetByBookingID(first.ID); err != nil || found {
		return
	}

	bus, err := s.Buses.GetByID(first.BusID)
	if err != nil {
		return
	}
	passenger, err := s.Passengers.GetByID(first.PassengerID)
	if err != nil {
		return
	}

	seats := make([]string, 0, len(bookings))
	ids := make([]int64, 0, len(bookings))
	var total float64
	for _, b := range bookings {
		seats = append(seats, b.SeatNumber)
		ids = append(ids, b.ID)
		total += b.PricePaid
	}

	s.emitReceiptAndSMS(ctx, ReceiptRequest{
		BookingRef:    bookingRef(first.ID),
		PassengerName: strings.TrimSpace(passenger.FirstName + " " + passenger.LastName),
		Email:         passenger.Email,
		Phone:         passenger.Phone,
		RouteName:     s.routeName(bus),
		BusName:       bus.Name,
		Seats:         seats,
		Amount:        total,
	}, ids, passenger.Phone, seats, total)
}

func (s BookingService) normalizeSeats(raw []string, capacity int) ([]string, error) {
	out := []string{}
	seen := map[string]bool{}
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		c, err := utils.NormalizeSeat(r, capacity)
		if err != nil {
			return nil, domain.ValidationError{Field: "seats", Msg: err.Error()}
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, domain.ValidationError{Field: "seats", Msg: "no seats supplied"}
	}
	return out, nil
}

// insertSeats writes one booking row per seat via conditional inserts. Any
// refusal rolls back every row written so far plus the passenger row.
func (s BookingService) insertSeats(passengerID, busID int64, tripID *int64, seats []string, unit float64, ref, status string) ([]int64, error) {
	inserted := []int64{}
	for _, seat := range seats {
		extRef := ref
		if len(seats) > 1 {
			extRef = ref + ":" + seat
		}
		id, ok, err := s.Bookings.InsertConditional(models.Booking{
			PassengerID: passengerID,
			BusID:       busID,
			TripID:      tripID,
			SeatNumber:  seat,
			PricePaid:   unit,
			Status:      status,
			ExternalRef: extRef,
		})
		if err == nil && !ok {
			err = domain.SeatBookedError{Seat: seat}
		}
		if err != nil {
			if rbErr := s.Bookings.DeleteByIDs(inserted); rbErr != nil {
				utils.LogEvent(s.RequestID, "booking", "rollback", fmt.Sprintf("ids=%v err=%v", inserted, rbErr))
			}
			if rbErr := s.Passengers.Delete(passengerID); rbErr != nil {
				utils.LogEvent(s.RequestID, "booking", "rollback_passenger", fmt.Sprintf("id=%d err=%v", passengerID, rbErr))
			}
			return nil, err
		}
		inserted = append(inserted, id)
	}
	return inserted, nil
}

// refreshAvailableSeats recomputes the denormalized hint in trip-aware mode.
func (s BookingService) refreshAvailableSeats(bus models.Bus, tripID *int64) {
	if tripID == nil {
		return
	}
	count, err := s.Bookings.CountConfirmed(bus.ID, *tripID)
	if err != nil {
		return
	}
	available := bus.Capacity - count
	if available < 0 {
		available = 0
	}
	_ = s.Buses.UpdateAvailableSeats(bus.ID, available)
}

func (s BookingService) routeName(bus models.Bus) string {
	if bus.RouteID > 0 {
		if route, err := s.Routes.GetRoute(bus.RouteID); err == nil && route.Name != "" {
			return route.Name
		}
	}
	return bus.RouteText
}

// fanOutSideEffects runs the best-effort receipt + SMS path after commit.
// Failures are logged and swallowed; they never invalidate the booking.
func (s BookingService) fanOutSideEffects(ctx context.Context, bus models.Bus, trip *models.TripSchedule, bookingIDs []int64, seats []string, req ConfirmRequest, amount float64) string {
	rr := ReceiptRequest{
		BookingRef:    bookingRef(bookingIDs[0]),
		PassengerName: strings.TrimSpace(req.FirstName + " " + req.LastName),
		Email:         req.Email,
		Phone:         req.Phone,
		RouteName:     s.routeName(bus),
		BusName:       bus.Name,
		Seats:         seats,
		Amount:        amount,
	}
	if trip != nil {
		rr.DepartureDate = trip.DepartureDate
		rr.DepartureTime = trip.DepartureTime
	}
	return s.emitReceiptAndSMS(ctx, rr, bookingIDs, req.Phone, seats, amount)
}

func (s BookingService) emitReceiptAndSMS(ctx context.Context, rr ReceiptRequest, bookingIDs []int64, phone string, seats []string, amount float64) string {
	receiptURL := ""
	if s.GenerateReceipt != nil {
		result, err := s.GenerateReceipt(ctx, rr)
		if err != nil {
			utils.LogEvent(s.RequestID, "booking", "receipt", fmt.Sprintf("ref=%s err=%v", rr.BookingRef, err))
		} else {
			receiptURL = result.ReceiptURL
			for _, id := range bookingIDs {
				if err := s.Receipts.Insert(models.BookingReceipt{
					BookingID:   id,
					ReceiptURL:  result.ReceiptURL,
					DriveFileID: result.DriveFileID,
				}); err != nil {
					utils.LogEvent(s.RequestID, "booking", "receipt_persist", fmt.Sprintf("booking=%d err=%v", id, err))
				}
			}
		}
	}

	if s.SendSMS != nil && strings.TrimSpace(phone) != "" {
		msg := BookingSMS(rr.BookingRef, seats, amount, receiptURL)
		if err := s.SendSMS(ctx, phone, msg); err != nil {
			utils.LogEvent(s.RequestID, "booking", "sms", fmt.Sprintf("ref=%s err=%v", rr.BookingRef, err))
		}
	}
	return receiptURL
}

// rebuildConfirmation reconstructs the original response for a duplicate
// finalization request.
func (s BookingService) rebuildConfirmation(bus models.Bus, bookings []models.Booking) (ConfirmResult, error) {
	first := bookings[0]

	passenger, err := s.Passengers.GetByID(first.PassengerID)
	if err != nil {
		return ConfirmResult{}, err
	}

	seats := make([]string, 0, len(bookings))
	ids := make([]int64, 0, len(bookings))
	var total float64
	for _, b := range bookings {
		seats = append(seats, b.SeatNumber)
		ids = append(ids, b.ID)
		total += b.PricePaid
	}

	receiptURL := ""
	if rec, found, err := s.Receipts.GetByBookingID(first.ID); err == nil && found {
		receiptURL = rec.ReceiptURL
	}

	return ConfirmResult{
		BookingID:     bookingRef(first.ID),
		BookingIDs:    bookingRefs(ids),
		PassengerName: strings.TrimSpace(passenger.FirstName + " " + passenger.LastName),
		RouteName:     s.routeName(bus),
		BusName:       bus.Name,
		Seat:          seats[0],
		Seats:         seats,
		SeatCount:     len(seats),
		Price:         total,
		Phone:         passenger.Phone,
		Email:         passenger.Email,
		Status:        models.BookingStatusConfirmed,
		ReceiptURL:    receiptURL,
		Duplicate:     true,
	}, nil
}

func bookingRefs(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, bookingRef(id))
	}
	return out
}

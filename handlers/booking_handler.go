package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"redbus_site/models"
	"redbus_site/utils"
)

const (
	blankFeedbackMsg = "Please provide some feedback before submitting."
	thanksMsg        = "Thank you for your feedback! Your input helps us improve."
	feedbackListSize = 20
)

var (
	validate = validator.New()

	errBlankFeedback  = errors.New(blankFeedbackMsg)
	errNoSearchYet    = errors.New("search for buses before leaving feedback")
	errFeedbackClosed = errors.New("open the feedback form first")
)

// book confirms a mock booking. Nothing is reserved or charged.
func book(req models.BookingRequest) (models.BookingConfirmation, error) {
	req.BusName = strings.TrimSpace(req.BusName)
	req.PassengerName = strings.TrimSpace(req.PassengerName)
	if err := validate.Struct(req); err != nil {
		return models.BookingConfirmation{}, err
	}
	return models.BookingConfirmation{
		ID:            uuid.NewString(),
		BusName:       req.BusName,
		Seats:         req.Seats,
		PassengerName: req.PassengerName,
		Message: fmt.Sprintf("Booking initiated for %d seat(s) on %s for %s",
			req.Seats, req.BusName, req.PassengerName),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BusHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		log.Printf("CreateBooking: error decoding request: %v", err)
		utils.WriteError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	conf, err := book(req)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	log.Printf("CreateBooking: %s", conf.Message)
	utils.WriteJSON(w, http.StatusCreated, conf)
}

// BookForm handles the booking form on the search page.
func (h *BusHandler) BookForm(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Load(w, r)
	if err := r.ParseForm(); err != nil {
		st.Flash("Invalid booking form", true)
	} else {
		seats, _ := strconv.Atoi(r.PostForm.Get("seats"))
		conf, err := book(models.BookingRequest{
			BusName:       r.PostForm.Get("bus_name"),
			Seats:         seats,
			PassengerName: r.PostForm.Get("passenger_name"),
		})
		if err != nil {
			st.Flash(validationMessage(err), true)
		} else {
			log.Printf("BookForm: %s", conf.Message)
			st.Flash(conf.Message, false)
		}
	}
	h.sessions.Save(st)
	h.redirectHome(w, r, st)
}

// OpenFeedback handles POST /api/v1/feedback/open.
func (h *BusHandler) OpenFeedback(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Load(w, r)
	if !st.OpenFeedback() {
		utils.WriteError(w, http.StatusConflict, errNoSearchYet.Error())
		return
	}
	h.sessions.Save(st)
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"feedback_open": true})
}

// SubmitFeedback handles POST /api/v1/feedback.
func (h *BusHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Load(w, r)
	var req models.FeedbackRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		log.Printf("SubmitFeedback: error decoding request: %v", err)
		utils.WriteError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	fb, err := h.saveFeedback(r.Context(), st.ID, st.FeedbackOpen, st.LastQuery, req)
	switch {
	case errors.Is(err, errFeedbackClosed):
		utils.WriteError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, errBlankFeedback):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case isValidation(err):
		utils.WriteError(w, http.StatusBadRequest, validationMessage(err))
		return
	case err != nil:
		log.Printf("SubmitFeedback: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Error saving feedback")
		return
	}

	st.FeedbackSubmitted()
	h.sessions.Save(st)
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  thanksMsg,
		"feedback": fb,
	})
}

// ListFeedback handles GET /api/v1/feedback.
func (h *BusHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	items, err := h.feedback.Recent(r.Context(), feedbackListSize)
	if err != nil {
		log.Printf("ListFeedback: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Error fetching feedback")
		return
	}
	if items == nil {
		items = []models.Feedback{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"feedback": items, "count": len(items)})
}

// OpenFeedbackForm and FeedbackForm back the buttons on the search page.
func (h *BusHandler) OpenFeedbackForm(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Load(w, r)
	if !st.OpenFeedback() {
		st.Flash(errNoSearchYet.Error(), true)
	}
	h.sessions.Save(st)
	h.redirectHome(w, r, st)
}

func (h *BusHandler) FeedbackForm(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Load(w, r)
	if err := r.ParseForm(); err != nil {
		st.Flash("Invalid feedback form", true)
		h.sessions.Save(st)
		h.redirectHome(w, r, st)
		return
	}
	rating, _ := strconv.Atoi(r.PostForm.Get("rating"))
	_, err := h.saveFeedback(r.Context(), st.ID, st.FeedbackOpen, st.LastQuery, models.FeedbackRequest{
		Rating: rating,
		Text:   r.PostForm.Get("text"),
	})
	switch {
	case err == nil:
		st.FeedbackSubmitted()
		st.Flash(thanksMsg, false)
	case errors.Is(err, errBlankFeedback):
		st.Flash(blankFeedbackMsg, true)
	case isValidation(err):
		st.Flash(validationMessage(err), true)
	default:
		log.Printf("FeedbackForm: %v", err)
		st.Flash("Could not save your feedback, please try again.", true)
	}
	h.sessions.Save(st)
	h.redirectHome(w, r, st)
}

func (h *BusHandler) saveFeedback(ctx context.Context, sessionID string, open bool, lastQuery string, req models.FeedbackRequest) (models.Feedback, error) {
	if !open {
		return models.Feedback{}, errFeedbackClosed
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return models.Feedback{}, errBlankFeedback
	}
	if err := validate.Struct(req); err != nil {
		return models.Feedback{}, err
	}

	fb := models.Feedback{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Rating:    req.Rating,
		Text:      req.Text,
		Criteria:  lastQuery,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.feedback.Save(ctx, fb); err != nil {
		return models.Feedback{}, fmt.Errorf("save feedback: %w", err)
	}
	return fb, nil
}

func isValidation(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// validationMessage turns validator errors into a short user message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	var parts []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "min", "max":
			parts = append(parts, fmt.Sprintf("%s must be between allowed bounds (%s %s)", fe.Field(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}

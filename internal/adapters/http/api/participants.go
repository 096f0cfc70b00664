package api

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/raffle/internal/adapters/repository"
	"github.com/okian/raffle/internal/domain/model"
)

// Response messages.
const (
	msgRegistered    = "Thanks for registering! Check your inbox to verify your account."
	msgVerified      = "Email verified. You can now create your password."
	msgActivated     = "Your account is active. You are now entered in the raffle."
	msgLoggedIn      = "Login successful."
	msgEmailTaken    = "This email is already registered for the raffle."
	msgInvalidPhone  = "Phone may only contain digits, spaces, + or -."
	msgTokenUsed     = "Invalid or already used verification token."
	msgNotVerified   = "Invalid token or email not verified."
	msgBadCredential = "Invalid credentials."
	msgNotAdmin      = "You do not have administrator permissions."
)

type registerBody struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

type verifyBody struct {
	Token *string `json:"token"`
}

type setPasswordBody struct {
	VerificationToken *string `json:"verification_token"`
	Password          *string `json:"password"`
	PasswordConfirm   *string `json:"password_confirm"`
}

type loginBody struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && addr.Name == ""
}

// validUUID parses a token and returns its canonical form.
func validUUID(errs fieldErrors, field string, v *string) string {
	raw := requireString(errs, field, v)
	if raw == "" {
		return ""
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		errs.add(field, msgInvalidUUID)
		return ""
	}
	return id.String()
}

func validatePassword(errs fieldErrors, field, pw string) {
	if len(pw) > 72 {
		errs.add(field, msgPasswordLong)
		return
	}
	if len([]rune(pw)) < 8 {
		errs.add(field, msgPasswordShort)
	}
	if strings.Trim(pw, "0123456789") == "" {
		errs.add(field, msgPasswordNumeric)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	err := decodeBody(r, &body)
	errs := fieldErrors{}
	email := requireString(errs, "email", body.Email)
	if email != "" && !validEmail(email) {
		errs.add("email", msgInvalidEmail)
	}
	fullName := requireString(errs, "full_name", body.FullName)
	phone := requireString(errs, "phone", body.Phone)
	if phone != "" && !repository.ValidPhone(phone) {
		errs.add("phone", msgInvalidPhone)
	}
	if badBody(w, err, errs) {
		return
	}

	p, err := s.store.Register(r.Context(), email, fullName, phone)
	switch {
	case errors.Is(err, repository.ErrEmailTaken):
		writeJSON(w, http.StatusBadRequest, fieldErrors{"email": {msgEmailTaken}})
		return
	case errors.Is(err, repository.ErrInvalidPhone):
		writeJSON(w, http.StatusBadRequest, fieldErrors{"phone": {msgInvalidPhone}})
		return
	case err != nil:
		s.internalError(r.Context(), w, err)
		return
	}

	s.dispatch(r.Context(), model.NotifyVerification, p.ID)
	writeJSON(w, http.StatusCreated, model.RegistrationResponse{
		Message:     msgRegistered,
		Participant: model.RegisteredParticipant{Email: p.Email, FullName: p.FullName},
	})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var body verifyBody
	err := decodeBody(r, &body)
	errs := fieldErrors{}
	token := validUUID(errs, "token", body.Token)
	if badBody(w, err, errs) {
		return
	}

	p, err := s.store.Verify(r.Context(), token)
	switch {
	case errors.Is(err, repository.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, msgTokenUsed)
		return
	case err != nil:
		s.internalError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ParticipantResponse{Message: msgVerified, Participant: toParticipant(p)})
}

func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var body setPasswordBody
	err := decodeBody(r, &body)
	errs := fieldErrors{}
	token := validUUID(errs, "verification_token", body.VerificationToken)
	password := requireString(errs, "password", body.Password)
	if password != "" {
		validatePassword(errs, "password", password)
	}
	confirm := requireString(errs, "password_confirm", body.PasswordConfirm)
	if len(errs) == 0 && password != confirm {
		errs.add("password_confirm", msgPasswordMismatch)
	}
	if badBody(w, err, errs) {
		return
	}

	p, err := s.store.SetPassword(r.Context(), token, password)
	switch {
	case errors.Is(err, repository.ErrNotVerified):
		writeError(w, http.StatusBadRequest, msgNotVerified)
		return
	case err != nil:
		s.internalError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ParticipantResponse{Message: msgActivated, Participant: toParticipant(p)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	err := decodeBody(r, &body)
	errs := fieldErrors{}
	email := requireString(errs, "email", body.Email)
	if email != "" && !validEmail(email) {
		errs.add("email", msgInvalidEmail)
	}
	password := requireString(errs, "password", body.Password)
	if badBody(w, err, errs) {
		return
	}

	p, session, err := s.store.Login(r.Context(), email, password)
	switch {
	case errors.Is(err, repository.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, msgBadCredential)
		return
	case errors.Is(err, repository.ErrNotAdmin):
		writeError(w, http.StatusForbidden, msgNotAdmin)
		return
	case err != nil:
		s.internalError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.LoginResponse{
		Message: msgLoggedIn,
		Tokens:  model.Tokens{Access: session.Access, Refresh: session.Refresh},
		User:    model.User{ID: p.ID, Email: p.Email, FullName: p.FullName, IsAdmin: p.IsAdmin},
	})
}

func toParticipant(p repository.Participant) model.Participant {
	return model.Participant{
		ID:             p.ID,
		Email:          p.Email,
		FullName:       p.FullName,
		Phone:          p.Phone,
		IsVerified:     p.IsVerified,
		VerifiedAt:     p.VerifiedAt,
		CreatedAt:      p.CreatedAt,
		CanParticipate: p.CanParticipate(),
	}
}

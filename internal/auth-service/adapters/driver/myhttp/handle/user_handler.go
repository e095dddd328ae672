package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ride-dispatch/internal/auth-service/core/domain/dto"
	"ride-dispatch/internal/auth-service/core/service"
	"ride-dispatch/internal/mylogger"
)

type AuthHandler struct {
	authService *service.AuthService
	mylog       mylogger.Logger
}

func NewAuthHandler(authService *service.AuthService, mylog mylogger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		mylog:       mylog,
	}
}

func (ah *AuthHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var regReq dto.UserRegistrationRequest

		mylog := ah.mylog.Action("Register")

		if err := json.NewDecoder(r.Body).Decode(&regReq); err != nil {
			mylog.Error("Failed to parse registration", err)
			jsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), WaitTime*time.Second)
		defer cancel()

		userId, accessToken, err := ah.authService.Register(ctx, regReq)
		if err != nil {
			if errors.Is(err, service.ErrEmailRegistered) || errors.Is(err, service.ErrUnknownRole) {
				jsonError(w, http.StatusBadRequest, err)
				return
			}
			jsonError(w, http.StatusInternalServerError, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]string{
			"msg":        fmt.Sprintf("%s registered successfully!", regReq.Name),
			"jwt_access": accessToken,
			"userId":     userId,
		})
		mylog.Info("Successfully registered!")
	}
}

func (ah *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var authReq dto.UserAuthRequest

		mylog := ah.mylog.Action("Login")

		if err := json.NewDecoder(r.Body).Decode(&authReq); err != nil {
			mylog.Error("Failed to parse auth", err)
			jsonError(w, http.StatusBadRequest, errors.New("failed to parse JSON"))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), WaitTime*time.Second)
		defer cancel()

		accessToken, err := ah.authService.Login(ctx, authReq)
		if err != nil {
			if errors.Is(err, service.ErrUnknownEmail) || errors.Is(err, service.ErrPasswordUnknown) {
				jsonError(w, http.StatusUnauthorized, err)
				return
			}
			jsonError(w, http.StatusInternalServerError, err)
			return
		}

		jsonResponse(w, http.StatusOK, map[string]string{
			"msg":        "Successfully login!",
			"jwt_access": accessToken,
		})
		mylog.Info("Successfully login!")
	}
}

func (ah *AuthHandler) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := ah.mylog.Action("Profile")

		id, err := uuid.Parse(r.Header.Get("X-UserId"))
		if err != nil {
			jsonError(w, http.StatusUnauthorized, errors.New("missing user identity"))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), WaitTime*time.Second)
		defer cancel()

		profile, err := ah.authService.Profile(ctx, id)
		if err != nil {
			mylog.Error("cannot load profile", err)
			jsonError(w, http.StatusInternalServerError, err)
			return
		}

		jsonResponse(w, http.StatusOK, profile)
	}
}

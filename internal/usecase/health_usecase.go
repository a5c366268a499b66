package usecase

import (
	"context"

	"contact-mail-backend/pkg/email"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	transports []email.Transport
}

// NewHealthUsecase reports the configured transports. Availability is a
// configuration check only: no connection is attempted.
func NewHealthUsecase(transports ...email.Transport) HealthUsecase {
	return &healthUsecase{transports: transports}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	status := map[string]string{"status": "ok"}
	for _, t := range u.transports {
		if t.Available() {
			status[t.Name()] = "available"
		} else {
			status[t.Name()] = "not available"
		}
	}
	return status
}

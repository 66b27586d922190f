package ledger

import (
	"errors"
	"net/http"

	"nursesrent/utils"

	"github.com/stripe/stripe-go/v76"
)

const unavailableMessage = "Payment provider is unavailable, please try again later"

// Translate classifies a provider error. Missing objects become not-found, rejected
// requests become validation errors and everything else is treated as an upstream outage.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return utils.Upstream(unavailableMessage, err)
	}

	switch {
	case stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing:
		return utils.NewAppError(utils.KindNotFound, "Payment object not found", err)
	case stripeErr.HTTPStatusCode == http.StatusTooManyRequests || stripeErr.HTTPStatusCode >= http.StatusInternalServerError:
		return utils.Upstream(unavailableMessage, err)
	case stripeErr.HTTPStatusCode == http.StatusUnauthorized || stripeErr.HTTPStatusCode == http.StatusForbidden:
		return utils.Internal("payment provider rejected credentials", err)
	case stripeErr.HTTPStatusCode >= http.StatusBadRequest:
		msg := stripeErr.Msg
		if msg == "" {
			msg = "Payment request was rejected"
		}
		return utils.NewAppError(utils.KindValidation, msg, err)
	default:
		return utils.Upstream(unavailableMessage, err)
	}
}

// IsNotFound reports whether err means the ledger object does not exist.
func IsNotFound(err error) bool {
	return utils.IsKind(Translate(err), utils.KindNotFound)
}

package services

import (
	"errors"
	"fmt"

	"github.com/yoockh/wacrm/internal/providers/llm"
	"github.com/yoockh/wacrm/internal/utils"
)

const maxUpstreamBody = 1024

// DescribeError renders err for callers and traces: the AppError message,
// followed by the provider status and body when a provider rejected the
// request. Wrapped transport causes are left out since they can carry
// request URLs.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}

	msg := "internal error"
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}

	var ue *llm.UpstreamError
	if !errors.As(err, &ue) {
		return msg
	}
	body := truncateRunes(ue.Body, maxUpstreamBody)
	switch {
	case ue.StatusCode != 0 && body != "":
		return fmt.Sprintf("%s: status %d: %s", msg, ue.StatusCode, body)
	case ue.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", msg, ue.StatusCode)
	case body != "":
		return fmt.Sprintf("%s: %s", msg, body)
	default:
		return msg
	}
}

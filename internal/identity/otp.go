package identity

import (
	"context"

	"go.uber.org/zap"
)

// CodeSender delivers an issued verification code to its receiver.
type CodeSender interface {
	SendCode(ctx context.Context, receiver, codeType, code string) error
}

// LogCodeSender writes codes to the debug log. For environments without an
// SMS or mail gateway.
type LogCodeSender struct {
	logger *zap.Logger
}

// NewLogCodeSender creates a CodeSender that only logs.
func NewLogCodeSender(logger *zap.Logger) *LogCodeSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogCodeSender{logger: logger}
}

// SendCode implements CodeSender.
func (s *LogCodeSender) SendCode(_ context.Context, receiver, codeType, code string) error {
	s.logger.Debug("verification code issued",
		zap.String("receiver", receiver), zap.String("type", codeType), zap.String("code", code))
	return nil
}

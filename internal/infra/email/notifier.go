package email

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

type SMTPNotifier struct {
	host   string
	port   int
	from   string
	logger *zap.Logger
}

func NewSMTPNotifier(host string, port int, from string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, logger: logger}
}

func (n *SMTPNotifier) NotifyFailure(_ context.Context, userEmail, runID, mediaName, errorMsg string) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	msg := FailureMessage(n.from, userEmail, runID, mediaName, errorMsg)

	err := smtp.SendMail(addr, nil, n.from, []string{userEmail}, msg)
	if err != nil {
		n.logger.Error("failed to send failure notification email",
			zap.String("to", userEmail),
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("failure notification email sent",
		zap.String("to", userEmail),
		zap.String("run_id", runID),
	)
	return nil
}

func FailureMessage(from, to, runID, mediaName, errorMsg string) []byte {
	subject := fmt.Sprintf("TruthLens - Media Analysis Failed [Run %s]", runID)
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"The analysis of your media could not be completed.\r\n\r\n"+
			"Run ID: %s\r\n"+
			"Media: %s\r\n"+
			"Error: %s\r\n\r\n"+
			"Please submit the file again or contact support.\r\n\r\n"+
			"-- TruthLens Analysis Service",
		runID, mediaName, errorMsg,
	)

	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body))
}

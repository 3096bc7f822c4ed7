package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/taskflow/internal/model"
)

// MailboxSink appends each export as a MIME message with a CSV attachment
// to an IMAP mailbox (typically Drafts), so it can be forwarded from any
// mail client.
type MailboxSink struct {
	cfg      model.MailboxConfig
	password string
	now      func() time.Time
	deliver  func(ctx context.Context, msg []byte) error
}

// NewMailboxSink returns a sink for the configured mailbox.
func NewMailboxSink(cfg model.MailboxConfig, password string) *MailboxSink {
	s := &MailboxSink{cfg: cfg, password: password, now: time.Now}
	s.deliver = s.appendIMAP
	return s
}

// Deliver builds the message and appends it to the mailbox.
func (s *MailboxSink) Deliver(ctx context.Context, name string, data []byte) (string, error) {
	msg, err := buildMessage(s.cfg.From, name, data, s.now())
	if err != nil {
		return "", err
	}
	if err := s.deliver(ctx, msg); err != nil {
		return "", err
	}
	return fmt.Sprintf("imap://%s@%s/%s", s.cfg.Username, s.cfg.Host, s.cfg.Mailbox), nil
}

// buildMessage renders a multipart message carrying data as an attachment.
func buildMessage(from, name string, data []byte, now time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetSubject("Task export " + name)
	if from != "" {
		h.SetAddressList("From", []*mail.Address{{Address: from}})
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("creating message body: %w", err)
	}
	var th mail.InlineHeader
	th.Set("Content-Type", "text/plain; charset=utf-8")
	w, err := tw.CreatePart(th)
	if err != nil {
		return nil, fmt.Errorf("creating text part: %w", err)
	}
	fmt.Fprintf(w, "Task export generated %s.\r\n", now.UTC().Format(time.RFC3339))
	w.Close()
	tw.Close()

	var ah mail.AttachmentHeader
	ah.Set("Content-Type", "text/csv; charset=utf-8")
	ah.SetFilename(name)
	aw, err := mw.CreateAttachment(ah)
	if err != nil {
		return nil, fmt.Errorf("creating attachment: %w", err)
	}
	if _, err := aw.Write(data); err != nil {
		return nil, fmt.Errorf("writing attachment: %w", err)
	}
	aw.Close()

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing message: %w", err)
	}
	return buf.Bytes(), nil
}

// appendIMAP logs in and APPENDs msg to the configured mailbox.
func (s *MailboxSink) appendIMAP(_ context.Context, msg []byte) error {
	addr := s.cfg.Host + ":" + s.cfg.Port

	var client *imapclient.Client
	var err error
	if s.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}
	defer client.Close()

	if err := client.Login(s.cfg.Username, s.password).Wait(); err != nil {
		return fmt.Errorf("authenticating %s: %w", s.cfg.Username, err)
	}
	defer func() { _ = client.Logout().Wait() }()

	cmd := client.Append(s.cfg.Mailbox, int64(len(msg)), &imap.AppendOptions{
		Flags: []imap.Flag{imap.FlagSeen},
		Time:  s.now(),
	})
	if _, err := cmd.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("closing append: %w", err)
	}
	if _, err := cmd.Wait(); err != nil {
		return fmt.Errorf("appending to %s: %w", s.cfg.Mailbox, err)
	}
	return nil
}

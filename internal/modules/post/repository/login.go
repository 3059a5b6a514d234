package repository

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/samber/oops"
)

// CodePrompt asks the operator for the login code sent by the platform.
type CodePrompt func(ctx context.Context) (string, error)

// Login authorizes the session interactively and persists it to the
// session file. It is a no-op for an already authorized session.
func (m *MTProto) Login(ctx context.Context, phone, password string, prompt CodePrompt) error {
	if err := os.MkdirAll(filepath.Dir(m.sessionPath), 0755); err != nil {
		return oops.With("session_path", m.sessionPath).Wrap(err)
	}

	codeAuth := auth.CodeAuthenticatorFunc(func(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
		return prompt(ctx)
	})
	flow := auth.NewFlow(auth.Constant(phone, password, codeAuth), auth.SendCodeOptions{})

	return m.client.Run(ctx, func(ctx context.Context) error {
		if err := m.client.Auth().IfNecessary(ctx, flow); err != nil {
			return oops.With("phone", phone).Wrapf(err, "authorizing user session")
		}

		self, err := m.client.Self(ctx)
		if err != nil {
			return oops.Wrap(err)
		}
		slog.Info("User session authorized", "user_id", self.ID, "username", self.Username, "session_path", m.sessionPath)
		return nil
	})
}

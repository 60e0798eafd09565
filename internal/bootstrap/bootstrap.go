package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/expenseflow/internal/config"
	"github.com/GregMSThompson/expenseflow/internal/events"
	"github.com/GregMSThompson/expenseflow/internal/store/local"
	"github.com/GregMSThompson/expenseflow/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client
	Local     *local.Store
	Publisher events.Publisher
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudLoggingHandler)
	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.Local, err = local.Open(cfg.LocalDBPath)
	if err != nil {
		return bs, err
	}
	bs.Publisher = InitPublisher(cfg, bs.Log)

	return bs, nil
}

// Close releases every client that Run opened.
func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Publisher != nil {
		errList = append(errList, bs.Publisher.Close())
	}
	if bs.Local != nil {
		errList = append(errList, bs.Local.Close())
	}
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	return errors.Join(errList...)
}

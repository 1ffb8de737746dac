package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go-hazardwatch/types"
)

const reportsCollection = "reports"

var (
	fsClient     *firestore.Client
	fsClientOnce sync.Once
	fsClientErr  error
)

// InitFirestoreClient initializes the singleton Firestore client from the
// base64-encoded FIREBASE_CREDENTIALS env var.
func InitFirestoreClient(ctx context.Context) (*firestore.Client, error) {
	fsClientOnce.Do(func() {
		encodedCreds := os.Getenv("FIREBASE_CREDENTIALS")
		creds, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			fsClientErr = fmt.Errorf("decoding Firestore credentials: %w", err)
			return
		}

		opt := option.WithCredentialsJSON(creds)
		app, err := firebase.NewApp(ctx, nil, opt)
		if err != nil {
			fsClientErr = fmt.Errorf("initializing Firebase app: %w", err)
			return
		}

		fsClient, fsClientErr = app.Firestore(ctx)
	})
	return fsClient, fsClientErr
}

// CloseFirestoreClient closes the singleton client.
func CloseFirestoreClient() {
	if fsClient != nil {
		fsClient.Close()
	}
}

// FirestoreStore keeps one document per report in the reports collection,
// keyed by report id. Selected with STORE_BACKEND=firestore.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Create(ctx context.Context, report types.Report) error {
	_, err := s.client.Collection(reportsCollection).Doc(report.ID).Set(ctx, report)
	if err != nil {
		return fmt.Errorf("saving report %s: %w", report.ID, err)
	}
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (types.Report, error) {
	docSnap, err := s.client.Collection(reportsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Report{}, ErrNotFound
		}
		return types.Report{}, fmt.Errorf("getting report %s: %w", id, err)
	}

	var report types.Report
	if err := docSnap.DataTo(&report); err != nil {
		return types.Report{}, fmt.Errorf("decoding report %s: %w", id, err)
	}
	return report, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]types.Report, error) {
	var reports []types.Report

	iter := s.client.Collection(reportsCollection).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating reports collection: %w", err)
		}

		var report types.Report
		if err := doc.DataTo(&report); err != nil {
			return nil, fmt.Errorf("decoding report %s: %w", doc.Ref.ID, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Update applies mutate inside a Firestore transaction so concurrent
// transitions against the same report cannot lose writes.
func (s *FirestoreStore) Update(ctx context.Context, id string, mutate func(*types.Report) error) (types.Report, error) {
	var updated types.Report

	docRef := s.client.Collection(reportsCollection).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return fmt.Errorf("getting report %s: %w", id, err)
		}

		var report types.Report
		if err := docSnap.DataTo(&report); err != nil {
			return fmt.Errorf("decoding report %s: %w", id, err)
		}
		if err := mutate(&report); err != nil {
			return err
		}
		updated = report
		return tx.Set(docRef, report)
	})
	if err != nil {
		return types.Report{}, err
	}
	return updated, nil
}

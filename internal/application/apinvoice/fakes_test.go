package apinvoice

import (
	"context"
	"errors"

	"github.com/freightdesk/backend/internal/domain/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/google/uuid"
)

type fakeShipmentRepo struct {
	byID   map[uuid.UUID]*shipment.Shipment
	byCode map[string]*shipment.Shipment
	saves  int
}

func newFakeShipmentRepo(shipments ...*shipment.Shipment) *fakeShipmentRepo {
	r := &fakeShipmentRepo{
		byID:   make(map[uuid.UUID]*shipment.Shipment),
		byCode: make(map[string]*shipment.Shipment),
	}
	for _, s := range shipments {
		r.byID[s.ID] = s
		r.byCode[s.ShipmentCode] = s
	}
	return r
}

func (r *fakeShipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	if s, ok := r.byID[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeShipmentRepo) FindByCode(_ context.Context, code string) (*shipment.Shipment, error) {
	if s, ok := r.byCode[code]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeShipmentRepo) FindAll(_ context.Context, _ shipment.Filter) ([]*shipment.Shipment, error) {
	out := make([]*shipment.Shipment, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeShipmentRepo) Count(_ context.Context, _ shipment.Filter) (int64, error) {
	return int64(len(r.byID)), nil
}

func (r *fakeShipmentRepo) Save(_ context.Context, s *shipment.Shipment) error {
	r.byID[s.ID] = s
	r.byCode[s.ShipmentCode] = s
	r.saves++
	return nil
}

func (r *fakeShipmentRepo) SaveWithLock(ctx context.Context, s *shipment.Shipment, _ int) error {
	if _, ok := r.byID[s.ID]; !ok {
		return shared.ErrNotFound
	}
	return r.Save(ctx, s)
}

type fakeUploadRepo struct {
	records         map[uuid.UUID]*apinvoice.UploadRecord
	classifications map[uuid.UUID]*apinvoice.PageClassification
}

func newFakeUploadRepo(uploads ...*apinvoice.UploadRecord) *fakeUploadRepo {
	r := &fakeUploadRepo{
		records:         make(map[uuid.UUID]*apinvoice.UploadRecord),
		classifications: make(map[uuid.UUID]*apinvoice.PageClassification),
	}
	for _, u := range uploads {
		r.records[u.ID] = u
	}
	return r
}

func (r *fakeUploadRepo) FindByID(_ context.Context, id uuid.UUID) (*apinvoice.UploadRecord, error) {
	if u, ok := r.records[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUploadRepo) FindAll(_ context.Context, _ shared.Filter) ([]*apinvoice.UploadRecord, error) {
	out := make([]*apinvoice.UploadRecord, 0, len(r.records))
	for _, u := range r.records {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUploadRepo) Save(_ context.Context, u *apinvoice.UploadRecord) error {
	r.records[u.ID] = u
	return nil
}

func (r *fakeUploadRepo) SaveClassification(_ context.Context, id uuid.UUID, c *apinvoice.PageClassification) error {
	r.classifications[id] = c
	return nil
}

func (r *fakeUploadRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.records, id)
	return nil
}

type fakeResultRepo struct {
	byUpload map[uuid.UUID]*apinvoice.ExtractionResult
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{byUpload: make(map[uuid.UUID]*apinvoice.ExtractionResult)}
}

func (r *fakeResultRepo) FindByUploadID(_ context.Context, uploadID uuid.UUID) (*apinvoice.ExtractionResult, error) {
	if res, ok := r.byUpload[uploadID]; ok {
		return res, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeResultRepo) Save(_ context.Context, res *apinvoice.ExtractionResult) error {
	r.byUpload[res.UploadID] = res
	return nil
}

func (r *fakeResultRepo) DeleteByUploadID(_ context.Context, uploadID uuid.UUID) error {
	delete(r.byUpload, uploadID)
	return nil
}

type fakeExtractionService struct {
	classification    *apinvoice.PageClassification
	classificationErr error
	records           []apinvoice.ExtractedRecord
	extractErr        error
}

func (f *fakeExtractionService) ClassifyPages(_ context.Context, _ []byte, _ string) (*apinvoice.PageClassification, error) {
	if f.classificationErr != nil {
		return nil, f.classificationErr
	}
	return f.classification, nil
}

func (f *fakeExtractionService) Extract(_ context.Context, _ []byte, _ string) ([]apinvoice.ExtractedRecord, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.records, nil
}

type fakeDocumentStore struct {
	documents map[string][]byte
}

func (f *fakeDocumentStore) Get(_ context.Context, key string) ([]byte, error) {
	if doc, ok := f.documents[key]; ok {
		return doc, nil
	}
	return nil, errors.New("object not found")
}

type noopLock struct{}

func (noopLock) Release(context.Context) error { return nil }

type noopLocker struct{ acquired []string }

func (l *noopLocker) Acquire(_ context.Context, code string) (Lock, error) {
	l.acquired = append(l.acquired, code)
	return noopLock{}, nil
}

type fakeDetector struct {
	calls int
	err   error
}

func (f *fakeDetector) Detect(_ context.Context, _ *shipment.Shipment) error {
	f.calls++
	return f.err
}

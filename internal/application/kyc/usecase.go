package kyc

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/repository"
)

// blobNamespace prefixes every manually attached document in blob storage.
const blobNamespace = "admin_manual"

// CustomerUseCase drives the backend writes: edit, delete, document attach
// and bulk import. Effects become visible to readers only through the next
// collection snapshot; there is no optimistic local update.
type CustomerUseCase struct {
	coll  repository.CustomerCollection
	blobs repository.BlobStore
	now   func() time.Time
}

// NewCustomerUseCase builds the use case.
func NewCustomerUseCase(coll repository.CustomerCollection, blobs repository.BlobStore) *CustomerUseCase {
	return &CustomerUseCase{coll: coll, blobs: blobs, now: time.Now}
}

// Edit overwrites name and PIP status and refreshes created_at, which doubles
// as the record's last-activity marker.
func (uc *CustomerUseCase) Edit(ctx context.Context, id, fullName, pipStatus string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	if pipStatus == "" {
		pipStatus = entity.PIPNone
	}
	return uc.coll.Update(ctx, id, map[string]any{
		entity.FieldFullName:  fullName,
		entity.FieldPIPStatus: pipStatus,
		entity.FieldCreatedAt: uc.timestamp(),
	})
}

// Delete removes the record and all its document links from the collection.
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	return uc.coll.Delete(ctx, id)
}

// Attach stores the file in blob storage and links the returned URL into the
// named document field, refreshing created_at. The field write happens
// strictly after a successful upload: a storage failure leaves the record
// untouched. The blob path carries a fresh UUID so repeated attaches for the
// same field never collide.
func (uc *CustomerUseCase) Attach(ctx context.Context, id, field, filename string, data []byte) (string, error) {
	if id == "" {
		return "", domain.ErrInvalidInput
	}
	if !validDocumentField(field) {
		return "", domain.ErrUnknownField
	}

	blobPath := fmt.Sprintf("%s/%s/%s_%s%s", blobNamespace, id, field, uuid.NewString(), path.Ext(filename))
	url, err := uc.blobs.Put(ctx, blobPath, data)
	if err != nil {
		return "", fmt.Errorf("upload attachment: %w", err)
	}

	err = uc.coll.Update(ctx, id, map[string]any{
		field:                 url,
		entity.FieldCreatedAt: uc.timestamp(),
	})
	if err != nil {
		return "", err
	}
	return url, nil
}

func (uc *CustomerUseCase) timestamp() string {
	return uc.now().UTC().Format(time.RFC3339)
}

func validDocumentField(field string) bool {
	for _, f := range entity.DocumentFields {
		if f == field {
			return true
		}
	}
	return false
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tripfolio/internal/dedup"
	"tripfolio/internal/domain"
	"tripfolio/internal/port"
)

// AttachmentLinker writes each accepted record's source document into its
// own storage slot. Slots are independent on purpose: one passenger's
// deletion must never break another passenger's download, so the same binary
// may be stored several times under different keys.
type AttachmentLinker struct {
	storage port.ObjectStorage
	bucket  string
}

// NewAttachmentLinker creates an AttachmentLinker targeting the given bucket.
func NewAttachmentLinker(storage port.ObjectStorage, bucket string) *AttachmentLinker {
	return &AttachmentLinker{storage: storage, bucket: bucket}
}

// slotUpload is one independent slot write.
type slotUpload struct {
	key   string
	doc   *domain.Document
	apply func(objectKey string)
}

// Link uploads the owning document for every slot in the plan concurrently
// and sets the resulting object key on the corresponding record. A failed
// slot write is logged and the record proceeds without its PDFPath; Link
// returns the keys that were written so a failed trip save can clean up.
func (l *AttachmentLinker) Link(ctx context.Context, tripID uuid.UUID, docs []domain.Document, plan *dedup.MergePlan) []string {
	uploads := l.buildUploads(tripID, docs, plan)
	if len(uploads) == 0 {
		return nil
	}

	written := make([]string, len(uploads))
	var wg sync.WaitGroup
	for i, u := range uploads {
		wg.Add(1)
		go func(i int, u slotUpload) {
			defer wg.Done()
			_, err := l.storage.Upload(ctx, port.UploadInput{
				Bucket:      l.bucket,
				Key:         u.key,
				Body:        bytes.NewReader(u.doc.Bytes),
				ContentType: u.doc.ContentType,
				Size:        int64(len(u.doc.Bytes)),
			})
			if err != nil {
				log.Printf("service.AttachmentLinker: slot write %s failed (record kept without attachment): %v", u.key, err)
				return
			}
			written[i] = u.key
		}(i, u)
	}
	wg.Wait()

	var uploaded []string
	for i, u := range uploads {
		if written[i] == "" {
			continue
		}
		u.apply(written[i])
		uploaded = append(uploaded, written[i])
	}
	return uploaded
}

// Cleanup best-effort deletes attachment keys written during an ingestion
// whose trip save failed, so the store does not accumulate orphans.
func (l *AttachmentLinker) Cleanup(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := l.storage.Delete(ctx, l.bucket, key); err != nil {
			log.Printf("service.AttachmentLinker: cleanup of %s failed: %v", key, err)
		}
	}
}

func (l *AttachmentLinker) buildUploads(tripID uuid.UUID, docs []domain.Document, plan *dedup.MergePlan) []slotUpload {
	var uploads []slotUpload
	seen := make(map[string]bool)

	for _, slot := range plan.FlightSlots {
		if slot.SourceDocIndex < 0 || slot.SourceDocIndex >= len(docs) {
			continue
		}
		doc := &docs[slot.SourceDocIndex]
		itemID := flightItemID(slot)
		key := slotKey(tripID, itemID, doc.Filename)

		flightIdx, passengerIdx := slot.FlightIndex, slot.PassengerIndex
		if seen[key] {
			// Several passengers from the same document share one stored binary.
			uploads = appendSharedApply(uploads, key, plan, flightIdx, passengerIdx)
			continue
		}
		seen[key] = true
		uploads = append(uploads, slotUpload{
			key: key,
			doc: doc,
			apply: func(objectKey string) {
				if passengerIdx >= 0 {
					plan.Flights[flightIdx].Passengers[passengerIdx].PDFPath = objectKey
				}
			},
		})
	}

	for _, slot := range plan.HotelSlots {
		if slot.SourceDocIndex < 0 || slot.SourceDocIndex >= len(docs) {
			continue
		}
		doc := &docs[slot.SourceDocIndex]
		key := slotKey(tripID, fmt.Sprintf("hotel-%d", slot.HotelIndex), doc.Filename)
		hotelIdx := slot.HotelIndex
		uploads = append(uploads, slotUpload{
			key: key,
			doc: doc,
			apply: func(objectKey string) {
				plan.Hotels[hotelIdx].PDFPath = objectKey
			},
		})
	}

	return uploads
}

// appendSharedApply chains an extra record update onto the upload that
// already owns the key, so one stored binary serves several passengers.
func appendSharedApply(uploads []slotUpload, key string, plan *dedup.MergePlan, flightIdx, passengerIdx int) []slotUpload {
	for i := range uploads {
		if uploads[i].key != key {
			continue
		}
		prev := uploads[i].apply
		uploads[i].apply = func(objectKey string) {
			prev(objectKey)
			if passengerIdx >= 0 {
				plan.Flights[flightIdx].Passengers[passengerIdx].PDFPath = objectKey
			}
		}
		break
	}
	return uploads
}

// flightItemID builds the slot item id: the flight's own slot for its first
// (or only) passenger, a per-document passenger slot otherwise.
func flightItemID(slot dedup.FlightSlot) string {
	if slot.PassengerIndex <= 0 {
		return fmt.Sprintf("flight-%d", slot.FlightIndex)
	}
	return fmt.Sprintf("flight-%d-p%d", slot.FlightIndex, slot.SourceDocIndex)
}

func slotKey(tripID uuid.UUID, itemID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".pdf"
	}
	return fmt.Sprintf("trips/%s/%s%s", tripID, itemID, ext)
}

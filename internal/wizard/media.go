package wizard

import (
	"strings"

	domain "github.com/sellerdesk/api/internal/domain"
)

// MediaTarget selects which draft media list an operation applies to.
type MediaTarget string

const (
	TargetProductMedia     MediaTarget = "productMedia"
	TargetPromotionalMedia MediaTarget = "promotionalMedia"
)

// Slot limits per target list.
const (
	MaxProductMedia     = 10
	MaxPromotionalMedia = 5
)

// SlotStatus tracks the upload lifecycle of one media slot.
type SlotStatus string

const (
	SlotPending SlotStatus = "pending"
	SlotDone    SlotStatus = "done"
	SlotFailed  SlotStatus = "failed"
)

// MediaSlot is one position in a draft media list. Slots are keyed by a
// generated id so out-of-order upload completions patch the correct position
// even after removals.
type MediaSlot struct {
	Key        string
	Status     SlotStatus
	Ref        domain.MediaRef
	PreviewURL string
	release    func()
}

// FileSelection describes one locally selected file handed to the uploader.
type FileSelection struct {
	Name        string
	ContentType string
	Size        int64
	PreviewURL  string
	Release     func()
}

func slotLimit(target MediaTarget) int {
	if target == TargetPromotionalMedia {
		return MaxPromotionalMedia
	}
	return MaxProductMedia
}

// detectMediaType classifies a MIME type; anything that is not an image or a
// video is filtered out before upload.
func detectMediaType(contentType string) (domain.MediaType, bool) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return domain.MediaTypeImage, true
	case strings.HasPrefix(contentType, "video/"):
		return domain.MediaTypeVideo, true
	default:
		return "", false
	}
}

func (d *ProductDraft) mediaList(target MediaTarget) *[]MediaSlot {
	if target == TargetPromotionalMedia {
		return &d.PromotionalMedia
	}
	return &d.ProductMedia
}

// UploadedMedia returns the resolved references of the target list in slot
// order, skipping uploads still in flight.
func (d *ProductDraft) UploadedMedia(target MediaTarget) []domain.MediaRef {
	list := *d.mediaList(target)
	refs := make([]domain.MediaRef, 0, len(list))
	for _, slot := range list {
		if slot.Status == SlotDone {
			refs = append(refs, slot.Ref)
		}
	}
	return refs
}

func (d *ProductDraft) appendSlot(target MediaTarget, slot MediaSlot) {
	list := d.mediaList(target)
	*list = append(*list, slot)
}

// completeSlot resolves the pending slot with the given key. Returns false if
// the slot was removed while the upload was in flight.
func (d *ProductDraft) completeSlot(target MediaTarget, key string, ref domain.MediaRef) bool {
	list := *d.mediaList(target)
	for i := range list {
		if list[i].Key != key {
			continue
		}
		if list[i].release != nil {
			list[i].release()
		}
		list[i] = MediaSlot{Key: key, Status: SlotDone, Ref: ref}
		return true
	}
	return false
}

// dropSlot removes the slot with the given key and releases its preview.
func (d *ProductDraft) dropSlot(target MediaTarget, key string) bool {
	list := d.mediaList(target)
	for i, slot := range *list {
		if slot.Key != key {
			continue
		}
		if slot.release != nil {
			slot.release()
		}
		*list = append((*list)[:i], (*list)[i+1:]...)
		return true
	}
	return false
}

// removeSlotAt removes the slot at index and releases its preview.
func (d *ProductDraft) removeSlotAt(target MediaTarget, index int) bool {
	list := d.mediaList(target)
	if index < 0 || index >= len(*list) {
		return false
	}
	if release := (*list)[index].release; release != nil {
		release()
	}
	*list = append((*list)[:index], (*list)[index+1:]...)
	return true
}

// releaseAllMedia frees every outstanding preview resource. Called when the
// session ends; in-flight uploads are not cancelled, late completions are
// simply discarded.
func (d *ProductDraft) releaseAllMedia() {
	for _, target := range []MediaTarget{TargetProductMedia, TargetPromotionalMedia} {
		list := d.mediaList(target)
		for i := range *list {
			if release := (*list)[i].release; release != nil {
				release()
				(*list)[i].release = nil
			}
		}
	}
}

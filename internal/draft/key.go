package draft

import "github.com/tripdesk/tripdesk/internal/model"

// NewEntitySentinel replaces the entity id in create-mode keys.
const NewEntitySentinel = "new"

// Key derives the storage key for a (formType, entityID) pair. It is the
// single source of truth for the key format; the writer, the reader and the
// sweep all go through it.
func Key(prefix string, form model.FormType, entity model.EntityID) string {
	id := string(entity)
	if id == "" {
		id = NewEntitySentinel
	}
	return prefix + string(form) + "_" + id
}

package entity

// Folder groups an owner's feeds under a display name.
// A feed belongs to at most one folder; unfiled feeds carry a NULL folder id.
type Folder struct {
	ID      int64
	OwnerID int64
	Name    string
}

// Validate validates the Folder entity fields.
func (f *Folder) Validate() error {
	if f.OwnerID <= 0 {
		return &ValidationError{Field: "owner_id", Message: "owner id is required"}
	}
	if f.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(f.Name) > maxNameLength {
		return &ValidationError{Field: "name", Message: "name is too long"}
	}
	return nil
}

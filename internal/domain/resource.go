package domain

// ProtectedResource is a registered resource server allowed to call the
// introspection endpoint.
type ProtectedResource struct {
	ResourceID         string `json:"resource_id" validate:"required"`
	ResourceSecretHash string `json:"-" validate:"required"`
}

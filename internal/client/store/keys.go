package store

// Well-known cache keys. Values under these keys are JSON-serialized text.
// There is no versioning scheme: changing a stored shape silently invalidates
// old values.
const (
	KeySessionUser = "mindspend.auth.user"
	KeyProfile     = "mindspend.auth.profile"

	// Denormalized display fields for fast synchronous reads.
	KeyDisplayUsername  = "mindspend.display.username"
	KeyDisplayFirstName = "mindspend.display.first_name"
	KeyDisplayLastName  = "mindspend.display.last_name"

	KeyUnifiedAnalysis = "mindspend.analysis.unified"

	KeyPendingRegistration = "mindspend.auth.pending_registration"
)

// KnownKeys lists every key this client ever writes, in the order they are
// wiped on account deletion.
var KnownKeys = []string{
	KeySessionUser,
	KeyProfile,
	KeyDisplayUsername,
	KeyDisplayFirstName,
	KeyDisplayLastName,
	KeyUnifiedAnalysis,
	KeyPendingRegistration,
}

// IdentityKeys are the keys cleared on logout. The analysis blob survives a
// logout so an immediate re-login does not lose derived data; it is removed
// only on account deletion.
var IdentityKeys = []string{
	KeySessionUser,
	KeyProfile,
	KeyDisplayUsername,
	KeyDisplayFirstName,
	KeyDisplayLastName,
}

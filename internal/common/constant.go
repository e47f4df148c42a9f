package common

// AuthTokenHeaderName is the HTTP header used to carry the session token on
// outbound API requests.
const AuthTokenHeaderName = "Authorization"

// LocalIDPrefix marks entity ids minted on the device before the backend has
// acknowledged the entity. The sync engine uses it to choose create vs update.
const LocalIDPrefix = "local_"

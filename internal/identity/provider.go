package identity

import "github.com/google/wire"

var ProviderSet = wire.NewSet(
	NewFirebaseAuthClient,
	NewFirebaseVerifier,
	wire.Bind(new(Verifier), new(*FirebaseVerifier)),
	wire.Bind(new(Directory), new(*FirebaseVerifier)),
)

package feature

// Key identifies a feature. Keys are drawn from a closed set fixed by the
// catalog at startup; they are never created or destroyed at runtime.
type Key string

// String returns the key as written in the static tables.
func (k Key) String() string { return string(k) }

// Keys of the features shipped in the default tables.
const (
	// API surface
	Swagger    Key = "swagger"
	Hateoas    Key = "hateoas"
	Validation Key = "validation"
	Pagination Key = "pagination"
	GraphQL    Key = "graphql"
	WebSockets Key = "websockets"

	GraphQLSubscriptions Key = "graphqlSubscriptions"

	// Persistence
	Caching      Key = "caching"
	SoftDelete   Key = "softDelete"
	Auditing     Key = "auditing"
	DBMigrations Key = "dbMigrations"
	FileStorage  Key = "fileStorage"

	// Security
	JWTAuth       Key = "jwtAuth"
	OAuth2        Key = "oauth2"
	TwoFactorAuth Key = "twoFactorAuth"
	RateLimiting  Key = "rateLimiting"

	// Messaging
	MailService       Key = "mailService"
	PasswordReset     Key = "passwordReset"
	EmailVerification Key = "emailVerification"
	JteTemplates      Key = "jteTemplates"
	I18n              Key = "i18n"

	// Architecture
	DomainEvents  Key = "domainEvents"
	EventSourcing Key = "eventSourcing"
	CQRS          Key = "cqrs"
	Sagas         Key = "sagas"

	// Operations
	HealthChecks Key = "healthChecks"
	Metrics      Key = "metrics"
	Tracing      Key = "tracing"
	Docker       Key = "docker"
	Kubernetes   Key = "kubernetes"
)

// Builtin lists the keys above in their canonical declaration order.
var Builtin = []Key{
	Swagger, Hateoas, Validation, Pagination, GraphQL, WebSockets, GraphQLSubscriptions,
	Caching, SoftDelete, Auditing, DBMigrations, FileStorage,
	JWTAuth, OAuth2, TwoFactorAuth, RateLimiting,
	MailService, PasswordReset, EmailVerification, JteTemplates, I18n,
	DomainEvents, EventSourcing, CQRS, Sagas,
	HealthChecks, Metrics, Tracing, Docker, Kubernetes,
}

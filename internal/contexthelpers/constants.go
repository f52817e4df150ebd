package contexthelpers

type contextKey string

const isAdminContextKey = contextKey("isAdmin")
const currentPathContextKey = contextKey("currentPath")
const csrfTokenContextKey = contextKey("csrfToken")

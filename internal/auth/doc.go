// Package auth issues and checks the bearer tokens of the stub
// test-management API.
//
// Tokens are HS256 JWTs. The "sub" claim holds the tester id as a decimal
// string; "email", "first_name" and "last_name" let clients show who is
// signed in without another request, and "jti" makes every token unique.
//
// HTTPAuthMiddleware guards API routes: requests without a valid
// "Authorization: Bearer <token>" header get 401 with a {"detail": "..."}
// body, others carry the verified Identity in their context (FromContext).
package auth

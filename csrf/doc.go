// Package csrf issues and validates single-use anti-forgery tokens.
//
// A token is bound to the user it was issued to and to a lifetime.
// Validation consumes the token: the check and the delete happen under one
// lock, so two concurrent validations of the same token cannot both
// succeed. A token presented by a different user than it was issued to is
// rejected but NOT consumed; the rightful owner can still spend it, and
// the attempt is recorded as a csrf_user_mismatch event.
//
// Tokens that expire unspent are reaped by Cleanup, either called directly
// or on the background sweep between Start and Stop.
package csrf

// Package rest exposes the authentication and task services over a JSON HTTP
// API.
//
// Handlers translate between the wire and the application services: request
// decoding and response shaping live here, while validation and business rules
// stay in the services. Errors cross the boundary through one mapper so every
// endpoint reports failures with the same envelope.
package rest

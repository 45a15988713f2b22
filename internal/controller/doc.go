// Package controller is the public façade of the client.
//
// It composes the session, the cached state model and the referential
// translator into one surface shaped for a host platform: reads are
// answered from the local cache and never touch the network, writes
// publish a command and apply an optimistic local update so subsequent
// reads reflect the requested value until the server's own push
// confirms or corrects it.
//
// Temperatures cross this boundary in Celsius; everything below it
// speaks wire units.
package controller

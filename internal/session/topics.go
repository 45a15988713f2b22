package session

import "strings"

// Topic templates. {id} resolves to the current installation's unique
// identifier, {email} to the account email.
//
// An older generation of the protocol funnelled everything through a
// single "$client/app" topic; inbound dispatch still accepts it, but
// nothing is published there.
const (
	topicListen       = "client/{email}"
	topicRealtime     = "client/{id}/realtime"
	topicInstallation = "client/{id}"

	topicReferentialRequest = "server/{email}/v1/install/user/referential"

	topicLegacyApp = "$client/app"
)

func resolveTopic(template, unique, email string) string {
	return strings.NewReplacer("{id}", unique, "{email}", email).Replace(template)
}

package repository

// Key scheme for the flat store. Records are plain JSON; relationships are
// rebuilt by scanning a prefix.
//
//	user:{id}                      profile record
//	user_by_email:{email}          -> user id
//	user_by_username:{username}    -> user id
//	ad:{id}                        listing record
//	ad_by_owner:{ownerId}:{adId}   -> listing id
//	payment:{id}                   payment record
//	chat:{id}                      chat record
//	message:{chatId}:{msgId}       message record
const (
	userKeyPrefix        = "user:"
	userByEmailKeyPrefix = "user_by_email:"
	userByUsernamePrefix = "user_by_username:"
	listingKeyPrefix     = "ad:"
	listingByOwnerPrefix = "ad_by_owner:"
	paymentKeyPrefix     = "payment:"
	chatKeyPrefix        = "chat:"
	messageKeyPrefix     = "message:"
)

func userKey(id string) string             { return userKeyPrefix + id }
func userByEmailKey(email string) string   { return userByEmailKeyPrefix + email }
func userByUsernameKey(name string) string { return userByUsernamePrefix + name }
func listingKey(id string) string          { return listingKeyPrefix + id }
func listingByOwnerKey(owner, id string) string {
	return listingByOwnerPrefix + owner + ":" + id
}
func paymentKey(id string) string { return paymentKeyPrefix + id }
func chatKey(id string) string    { return chatKeyPrefix + id }
func messageKey(chatID, msgID string) string {
	return messageKeyPrefix + chatID + ":" + msgID
}

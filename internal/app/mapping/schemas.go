package mapping

// PlaceholderPhoto is the photo reference used when the backend has none.
const PlaceholderPhoto = "/placeholder-avatar.png"

// DefaultRating is the rating shown for mentors without reviews.
const DefaultRating = 4.5

var idPaths = []string{"_id", "id"}

// Mentor maps a mentor profile.
var Mentor = Schema{
	{Name: "id", Paths: []string{"_id", "id", "mentorId", "user._id", "user.id"}, Kind: KindString, Default: ""},
	{Name: "name", Paths: []string{"name", "user.name", "fullName", "user.fullName"}, Kind: KindString, Default: "Unknown Mentor"},
	{Name: "title", Paths: []string{"title", "headline", "jobTitle"}, Kind: KindString, Default: ""},
	{Name: "company", Paths: []string{"company", "organization"}, Kind: KindString, Default: ""},
	{Name: "photo", Paths: []string{"photo", "avatar", "profileImage", "image", "user.avatar", "user.photo"}, Kind: KindString, Default: PlaceholderPhoto},
	{Name: "bio", Paths: []string{"bio", "about", "description"}, Kind: KindString, Default: ""},
	{Name: "expertise", Paths: []string{"expertise", "skills", "tags"}, Kind: KindStringList},
	{Name: "category", Paths: []string{"category", "field"}, Kind: KindString, Default: ""},
	{Name: "hourlyRate", Paths: []string{"hourlyRate", "price", "rate"}, Kind: KindNumber, Default: 0.0},
	{Name: "rating", Paths: []string{"rating", "averageRating", "avgRating"}, Kind: KindNumber, Default: DefaultRating},
	{Name: "reviewCount", Paths: []string{"reviewCount", "totalReviews", "reviewsCount", "numReviews"}, Kind: KindInt, Default: 0},
	{Name: "availability", Paths: []string{"availability", "availableSlots"}, Kind: KindStringList},
}

// Match maps a recommendation; it is Mentor plus the backend's score.
var Match = append(append(Schema{}, Mentor...),
	Field{Name: "matchScore", Paths: []string{"matchScore", "score", "compatibility"}, Kind: KindNumber, Default: nil},
)

// Session maps a booked mentoring session.
var Session = Schema{
	{Name: "id", Paths: idPaths, Kind: KindString, Default: ""},
	{Name: "mentorId", Paths: []string{"mentorId", "mentor._id", "mentor.id", "mentor"}, Kind: KindString, Default: ""},
	{Name: "mentorName", Paths: []string{"mentorName", "mentor.name", "mentor.user.name"}, Kind: KindString, Default: "Mentor"},
	{Name: "menteeId", Paths: []string{"menteeId", "mentee._id", "mentee.id", "mentee"}, Kind: KindString, Default: ""},
	{Name: "menteeName", Paths: []string{"menteeName", "mentee.name", "mentee.user.name"}, Kind: KindString, Default: ""},
	{Name: "date", Paths: []string{"date", "scheduledDate"}, Kind: KindString, Default: ""},
	{Name: "time", Paths: []string{"time", "startTime"}, Kind: KindString, Default: ""},
	{Name: "duration", Paths: []string{"duration", "durationMinutes"}, Kind: KindInt, Default: 60},
	{Name: "topic", Paths: []string{"topic", "title", "subject"}, Kind: KindString, Default: ""},
	{Name: "notes", Paths: []string{"notes", "description"}, Kind: KindString, Default: ""},
	{Name: "status", Paths: []string{"status"}, Kind: KindString, Default: "pending"},
	{Name: "meetingLink", Paths: []string{"meetingLink", "meetingUrl", "link"}, Kind: KindString, Default: ""},
}

// Review maps a mentor review.
var Review = Schema{
	{Name: "id", Paths: idPaths, Kind: KindString, Default: ""},
	{Name: "mentorId", Paths: []string{"mentorId", "mentor._id", "mentor.id", "mentor"}, Kind: KindString, Default: ""},
	{Name: "rating", Paths: []string{"rating", "stars"}, Kind: KindNumber, Default: 5.0},
	{Name: "comment", Paths: []string{"comment", "text", "review"}, Kind: KindString, Default: ""},
	{Name: "reviewerName", Paths: []string{"reviewerName", "user.name", "mentee.name", "author.name"}, Kind: KindString, Default: "Anonymous"},
	{Name: "createdAt", Paths: []string{"createdAt", "date"}, Kind: KindString, Default: ""},
}

// Message maps a persisted conversation message.
var Message = Schema{
	{Name: "id", Paths: idPaths, Kind: KindString, Default: ""},
	{Name: "conversationId", Paths: []string{"conversationId", "conversation._id", "conversation.id", "conversation"}, Kind: KindString, Default: ""},
	{Name: "senderId", Paths: []string{"senderId", "sender._id", "sender.id", "sender"}, Kind: KindString, Default: ""},
	{Name: "senderName", Paths: []string{"senderName", "sender.name"}, Kind: KindString, Default: "Unknown"},
	{Name: "text", Paths: []string{"text", "content", "body"}, Kind: KindString, Default: ""},
	{Name: "timestamp", Paths: []string{"timestamp", "createdAt", "sentAt"}, Kind: KindString, Default: ""},
	{Name: "status", Paths: []string{"status"}, Kind: KindString, Default: "sent"},
}

var participant = Schema{
	{Name: "id", Paths: []string{"_id", "id", "userId"}, Kind: KindString, Default: ""},
	{Name: "name", Paths: []string{"name", "user.name"}, Kind: KindString, Default: "Unknown"},
	{Name: "avatar", Paths: []string{"avatar", "photo", "user.avatar"}, Kind: KindString, Default: PlaceholderPhoto},
}

// Conversation maps a conversation summary.
var Conversation = Schema{
	{Name: "id", Paths: []string{"_id", "id", "conversationId"}, Kind: KindString, Default: ""},
	{Name: "participants", Paths: []string{"participants", "members"}, Kind: KindRecords, Schema: participant},
	{Name: "lastMessage", Paths: []string{"lastMessage.text", "lastMessage.content", "lastMessage"}, Kind: KindString, Default: ""},
	{Name: "updatedAt", Paths: []string{"updatedAt", "lastMessage.createdAt"}, Kind: KindString, Default: ""},
	{Name: "unreadCount", Paths: []string{"unreadCount", "unread"}, Kind: KindInt, Default: 0},
}

// User maps the authenticated user returned by /auth/me and the profile.
var User = Schema{
	{Name: "id", Paths: []string{"_id", "id", "userId", "user._id", "user.id"}, Kind: KindString, Default: ""},
	{Name: "name", Paths: []string{"name", "user.name", "fullName"}, Kind: KindString, Default: ""},
	{Name: "email", Paths: []string{"email", "user.email"}, Kind: KindString, Default: ""},
	{Name: "role", Paths: []string{"role", "user.role", "userType"}, Kind: KindString, Default: "mentee"},
	{Name: "avatar", Paths: []string{"avatar", "photo", "profileImage", "user.avatar"}, Kind: KindString, Default: PlaceholderPhoto},
	{Name: "bio", Paths: []string{"bio", "user.bio"}, Kind: KindString, Default: ""},
	{Name: "interests", Paths: []string{"interests", "goals", "skills"}, Kind: KindStringList},
}

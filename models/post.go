package models

// CommunityPostCollection is the document collection backing the bulletin board.
const CommunityPostCollection = "communitypost"

// CommunityPost is the stored form of a bulletin board post. It carries no
// identity field; the store assigns one on insert.
type CommunityPost struct {
	Title   string   `json:"title" bson:"title"`
	Content string   `json:"content" bson:"content"`
	Author  string   `json:"author" bson:"author"`
	Tags    []string `json:"tags" bson:"tags"`
	Likes   int      `json:"likes" bson:"likes"`
}

// PostView is a post as returned to API callers.
type PostView struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
	Likes   int      `json:"likes"`
}

// CreatePostReq is the body of a create request. Title and content must be
// non-empty; author must be present but may be blank.
type CreatePostReq struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Author  *string  `json:"author" binding:"required"`
	Tags    []string `json:"tags"`
}

// Document converts a validated request into the stored form. Tags default to
// an empty list and likes start at zero.
func (r CreatePostReq) Document() CommunityPost {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	var author string
	if r.Author != nil {
		author = *r.Author
	}
	return CommunityPost{
		Title:   r.Title,
		Content: r.Content,
		Author:  author,
		Tags:    tags,
		Likes:   0,
	}
}

// View attaches an identifier to a stored post.
func (p CommunityPost) View(id string) PostView {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostView{
		ID:      id,
		Title:   p.Title,
		Content: p.Content,
		Author:  p.Author,
		Tags:    tags,
		Likes:   p.Likes,
	}
}

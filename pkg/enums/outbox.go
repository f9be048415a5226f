package enums

// OutboxAggregateType names the entity an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateProduct    OutboxAggregateType = "product"
	AggregateCategory   OutboxAggregateType = "category"
	AggregateBlogPost   OutboxAggregateType = "blog_post"
	AggregateMediaAsset OutboxAggregateType = "media_asset"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateProduct,
	AggregateCategory,
	AggregateBlogPost,
	AggregateMediaAsset,
}

func (a OutboxAggregateType) String() string { return string(a) }

// IsValid reports whether the aggregate type is known.
func (a OutboxAggregateType) IsValid() bool { return contains(validAggregateTypes, a) }

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return parse(validAggregateTypes, value, "outbox aggregate type")
}

// OutboxEventType names a domain event relayed through the outbox.
type OutboxEventType string

const (
	EventProductCreated     OutboxEventType = "product_created"
	EventProductUpdated     OutboxEventType = "product_updated"
	EventProductDeleted     OutboxEventType = "product_deleted"
	EventCategoryCreated    OutboxEventType = "category_created"
	EventCategoryUpdated    OutboxEventType = "category_updated"
	EventCategoryDeleted    OutboxEventType = "category_deleted"
	EventBlogPostPublished  OutboxEventType = "blog_post_published"
	EventBlogPostDeleted    OutboxEventType = "blog_post_deleted"
	EventMediaAssetUploaded OutboxEventType = "media_asset_uploaded"
	EventMediaAssetDeleted  OutboxEventType = "media_asset_deleted"
)

var validEventTypes = []OutboxEventType{
	EventProductCreated,
	EventProductUpdated,
	EventProductDeleted,
	EventCategoryCreated,
	EventCategoryUpdated,
	EventCategoryDeleted,
	EventBlogPostPublished,
	EventBlogPostDeleted,
	EventMediaAssetUploaded,
	EventMediaAssetDeleted,
}

func (e OutboxEventType) String() string { return string(e) }

// IsValid reports whether the event type is known.
func (e OutboxEventType) IsValid() bool { return contains(validEventTypes, e) }

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parse(validEventTypes, value, "outbox event type")
}

package core

type ItemCategory string

const (
	CategoryTops        ItemCategory = "Tops"
	CategoryBottoms     ItemCategory = "Bottoms"
	CategoryDresses     ItemCategory = "Dresses"
	CategoryOuterwear   ItemCategory = "Outerwear"
	CategoryShoes       ItemCategory = "Shoes"
	CategoryAccessories ItemCategory = "Accessories"
)

type ItemSize string

const (
	SizeXS      ItemSize = "XS"
	SizeS       ItemSize = "S"
	SizeM       ItemSize = "M"
	SizeL       ItemSize = "L"
	SizeXL      ItemSize = "XL"
	SizeXXL     ItemSize = "XXL"
	SizeOneSize ItemSize = "One Size"
)

type ItemCondition string

const (
	ConditionLikeNew   ItemCondition = "Like New"
	ConditionExcellent ItemCondition = "Excellent"
	ConditionGood      ItemCondition = "Good"
	ConditionFair      ItemCondition = "Fair"
	ConditionPoor      ItemCondition = "Poor"
)

type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available" // 已上架，可交換
	ItemStatusPending   ItemStatus = "pending"   // 待審核
	ItemStatusSwapped   ItemStatus = "swapped"   // 已完成交換
)

const (
	ItemTitleMaxLen       = 100
	ItemDescriptionMaxLen = 500
	ItemPointsMax         = 1000
)

package logctx

import (
	"context"
	"ipfee/internal/global"
)

// Returns a child context whose tag list ends with newTag. The parent's list is never modified.
func AppendCtxTag(ctx context.Context, newTag string) (newCtx context.Context) {
	parentTags := GetTagList(ctx)

	tags := make([]string, len(parentTags), len(parentTags)+1)
	copy(tags, parentTags)
	tags = append(tags, newTag)

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Tags in order broad -> specific, empty when none are set
func GetTagList(ctx context.Context) (tags []string) {
	tags, ok := ctx.Value(global.LogTagsKey).([]string)
	if !ok {
		tags = []string{}
	}
	return
}

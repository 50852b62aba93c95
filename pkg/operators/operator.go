// Copyright 2025 quartzdb
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operators

import (
	"github.com/xlab/treeprint"

	"github.com/quartzdb/quartz/pkg/common"
	"github.com/quartzdb/quartz/pkg/storage"
	"github.com/quartzdb/quartz/pkg/util"
)

// Operator is a node in a query tree: up to two children, one output
// table, single-shot execution. Execute is idempotent after the first
// successful call.
type Operator interface {
	Execute() error
	GetOutput() (*storage.Table, error)
	Name() string
	Children() []Operator
}

// baseOperator carries the child links and the one-shot output slot.
// Concrete operators embed it and implement Execute and Name.
type baseOperator struct {
	left   Operator
	right  Operator
	output *storage.Table
}

func (op *baseOperator) Children() []Operator {
	children := make([]Operator, 0, 2)
	if op.left != nil {
		children = append(children, op.left)
	}
	if op.right != nil {
		children = append(children, op.right)
	}
	return children
}

func (op *baseOperator) GetOutput() (*storage.Table, error) {
	if op.output == nil {
		return nil, common.ErrNotExecuted
	}
	return op.output, nil
}

func (op *baseOperator) leftInputTable() (*storage.Table, error) {
	util.AssertFunc(op.left != nil)
	return op.left.GetOutput()
}

// Explain renders an operator tree, children indented under parents.
func Explain(op Operator) string {
	tree := treeprint.NewWithRoot(op.Name())
	explainChildren(tree, op)
	return tree.String()
}

func explainChildren(tree treeprint.Tree, op Operator) {
	for _, child := range op.Children() {
		branch := tree.AddBranch(child.Name())
		explainChildren(branch, child)
	}
}
